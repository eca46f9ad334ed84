package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalCache 基于 ristretto 的 L1 负缓存：只记"确认不存在"的 slug。
type LocalCache struct {
	cache    *ristretto.Cache
	emptyTTL time.Duration
}

// NewLocalCache 创建本地缓存。
// maxItems: 最大条目数；maxCost: 最大内存占用（字节）
func NewLocalCache(maxItems int64, maxCost int64) (*LocalCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // 计数器数量，建议为 maxItems 的 10 倍
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		cache:    cache,
		emptyTTL: 10 * time.Second, // 负缓存 TTL 短一些，保证多实例一致性
	}, nil
}

func (l *LocalCache) IsMissing(slug string) bool {
	_, ok := l.cache.Get(slug)
	return ok
}

func (l *LocalCache) MarkMissing(slug string) {
	// cost=1 表示按条目数限制
	l.cache.SetWithTTL(slug, struct{}{}, 1, l.emptyTTL)
}

func (l *LocalCache) Clear(slug string) {
	l.cache.Del(slug)
}

func (l *LocalCache) Close() {
	l.cache.Close()
}
