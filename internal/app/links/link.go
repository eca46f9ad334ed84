package links

import (
	"context"
	"time"
)

// Link 是短链领域对象。
//
// 说明：
// - Slug：短码（主键，由 URL+owner 确定性生成）
// - FullURL：原始长链接（跳转目标）
// - OwnerID：创建者的用户 id，每条链接恰好一个 owner
// - AttemptsLimit：可选的跳转次数上限，nil 表示不限
// - Attempts：已成功跳转的次数，只增不减，且只在 Resolve 路径上增加
// - CreatedAt：创建时间，写入后不再变化；过期判定以它为基准
type Link struct {
	Slug          string
	FullURL       string
	OwnerID       string
	AttemptsLimit *int
	Attempts      int
	CreatedAt     time.Time
}

// User 只有一个不透明的 id，匿名创建短链时由服务端生成。
type User struct {
	ID string
}

// LinkStore 是短链的持久化能力（外部协作者）。
//
// 约定：
// - 找不到记录统一返回 ErrLinkNotFound（裸错误，不带 slug 信息，由 service 层补全消息）
// - 单条记录级别的操作是原子的；跨调用不保证事务
// - IncrementAttempts 必须是存储层原子自增，不做读-改-写
type LinkStore interface {
	FindBySlug(ctx context.Context, slug string) (Link, error)
	// FindActiveByURL 查找同一 owner 下、createdAt > createdAfter 的同 URL 记录（去重检查用）。
	// 严格大于：createdAt == now-TTL 的记录已经过期，不算活跃。
	FindActiveByURL(ctx context.Context, fullURL, ownerID string, createdAfter time.Time) (Link, error)
	Insert(ctx context.Context, link Link) error
	IncrementAttempts(ctx context.Context, slug string) error
	UpdateLimit(ctx context.Context, slug string, limit *int) error
	Delete(ctx context.Context, slug string) error
	// DeleteCreatedBefore 一条语句批量删除过期记录，返回删除条数。
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserStore 是用户的持久化能力（外部协作者）。
type UserStore interface {
	FindByID(ctx context.Context, id string) (User, error)
	// Create 生成并持久化一个匿名用户。
	Create(ctx context.Context) (User, error)
}
