package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"linkshort.local/internal/platform/metrics"
)

const missingSentinel = "__nil__"

// LookupCache 是 slug 查找的两级负缓存：ristretto L1 + Redis L2。
//
// 只缓存"不存在"：命中的链接记录不缓存，因为跳转要读当前 attempts
// 并自增，数据库必须是唯一数据源；负缓存挡的是对已删除/乱输 slug
// 的穿透查询。
type LookupCache struct {
	client   *redis.Client
	local    *LocalCache
	emptyTTL time.Duration
}

func NewLookupCache(client *redis.Client, local *LocalCache) *LookupCache {
	return &LookupCache{
		client:   client,
		local:    local,
		emptyTTL: 30 * time.Second,
	}
}

// IsMissing 判断 slug 是否已被确认不存在。
func (c *LookupCache) IsMissing(ctx context.Context, slug string) bool {
	if c.local != nil && c.local.IsMissing(slug) {
		metrics.CacheOperations.WithLabelValues("l1", "hit_negative").Inc()
		return true
	}

	res, err := c.client.Get(ctx, "nf:"+slug).Result()
	if err == redis.Nil {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return false
	}
	if err != nil {
		// Redis 故障按未命中处理，查询落到数据库
		return false
	}
	if res == missingSentinel {
		metrics.CacheOperations.WithLabelValues("l2", "hit_negative").Inc()
		// 回填 L1
		if c.local != nil {
			c.local.MarkMissing(slug)
		}
		return true
	}
	return false
}

// MarkMissing 用明确哨兵值做负缓存，避免缓存穿透。
// 不用空串当哨兵：可读性差，也容易把"未命中"和"命中空值"搞混。
func (c *LookupCache) MarkMissing(ctx context.Context, slug string) {
	if c.local != nil {
		c.local.MarkMissing(slug)
	}
	if err := c.client.Set(ctx, "nf:"+slug, missingSentinel, c.emptyTTL).Err(); err != nil {
		slog.Debug("negative cache set failed", "err", err)
	}
}

// Clear 在 slug 重新可用（创建/复用）时清掉负缓存，避免短码暂时不可用。
func (c *LookupCache) Clear(ctx context.Context, slug string) {
	if c.local != nil {
		c.local.Clear(slug)
	}
	if err := c.client.Del(ctx, "nf:"+slug).Err(); err != nil {
		slog.Debug("negative cache del failed", "err", err)
	}
}

// Close 关闭本地缓存。
func (c *LookupCache) Close() {
	if c.local != nil {
		c.local.Close()
	}
}
