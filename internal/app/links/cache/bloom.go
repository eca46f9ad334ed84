package cache

import (
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
)

// SlugFilter 是已知 slug 的布隆过滤器，挡掉对乱码 slug 的数据库查询。
//
// 没有 Warm 之前一律放行（fail open）：空过滤器会把所有存量
// slug 都判成不存在，重启后必须先从数据库回灌。
type SlugFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
	ready  atomic.Bool
}

// NewSlugFilter 创建布隆过滤器。
// expectedItems: 预期元素数量；falsePositiveRate: 误判率（建议 0.01）
func NewSlugFilter(expectedItems uint, falsePositiveRate float64) *SlugFilter {
	return &SlugFilter{
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}
}

func (f *SlugFilter) Add(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(slug)
}

// Warm 批量灌入存量 slug 并启用过滤。
func (f *SlugFilter) Warm(slugs []string) {
	f.mu.Lock()
	for _, s := range slugs {
		f.filter.AddString(s)
	}
	f.mu.Unlock()
	f.ready.Store(true)
}

// MightExist 返回 false 表示一定不存在；true 表示可能存在（有误判率）。
func (f *SlugFilter) MightExist(slug string) bool {
	if !f.ready.Load() {
		return true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(slug)
}

// Count 返回已添加元素数量的估算值。
func (f *SlugFilter) Count() uint32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.ApproximatedSize()
}
