package repo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"linkshort.local/internal/app/links"
	"linkshort.local/internal/app/links/cache"
	"linkshort.local/internal/platform/metrics"
)

// LinksRepo 是 links.LinkStore 的 Postgres 实现。
//
// 读路径（FindBySlug）前面挡两层：布隆过滤器（乱码 slug 直接打回）
// 和负缓存（已确认不存在的 slug 不再查库）。cache/filter 允许为 nil，
// 测试和降级场景直接打库。
type LinksRepo struct {
	db     *pgxpool.Pool
	cache  *cache.LookupCache
	filter *cache.SlugFilter
}

func NewLinksRepo(db *pgxpool.Pool, lookupCache *cache.LookupCache, filter *cache.SlugFilter) *LinksRepo {
	return &LinksRepo{
		db:     db,
		cache:  lookupCache,
		filter: filter,
	}
}

// WarmFilter 从数据库回灌存量 slug，启用布隆过滤。
func (r *LinksRepo) WarmFilter(ctx context.Context) error {
	if r.filter == nil {
		return nil
	}
	dbctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := r.db.Query(dbctx, "SELECT slug FROM links")
	if err != nil {
		return err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		slugs = append(slugs, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	r.filter.Warm(slugs)
	slog.Info("slug filter warmed", "count", len(slugs))
	return nil
}

func (r *LinksRepo) FindBySlug(ctx context.Context, slug string) (links.Link, error) {
	if r.filter != nil && !r.filter.MightExist(slug) {
		metrics.CacheOperations.WithLabelValues("bloom", "reject").Inc()
		return links.Link{}, links.ErrLinkNotFound
	}
	if r.cache != nil && r.cache.IsMissing(ctx, slug) {
		return links.Link{}, links.ErrLinkNotFound
	}

	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	var link links.Link
	err := r.db.
		QueryRow(dbctx, "SELECT slug,full_url,owner_id,attempts_limit,attempts,created_at FROM links WHERE slug=$1", slug).
		Scan(&link.Slug, &link.FullURL, &link.OwnerID, &link.AttemptsLimit, &link.Attempts, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if r.cache != nil {
				r.cache.MarkMissing(ctx, slug)
			}
			return links.Link{}, links.ErrLinkNotFound
		}
		slog.Error(err.Error())
		return links.Link{}, err
	}
	return link, nil
}

func (r *LinksRepo) FindActiveByURL(ctx context.Context, fullURL, ownerID string, createdAfter time.Time) (links.Link, error) {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	var link links.Link
	err := r.db.
		QueryRow(dbctx,
			"SELECT slug,full_url,owner_id,attempts_limit,attempts,created_at FROM links WHERE full_url=$1 AND owner_id=$2 AND created_at>$3 LIMIT 1",
			fullURL, ownerID, createdAfter).
		Scan(&link.Slug, &link.FullURL, &link.OwnerID, &link.AttemptsLimit, &link.Attempts, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return links.Link{}, links.ErrLinkNotFound
		}
		slog.Error(err.Error())
		return links.Link{}, err
	}
	return link, nil
}

// Insert 落库新短链。slug 主键冲突按 last-writer-wins 覆盖：
// 去重检查和插入之间没有跨调用事务，并发竞争产生的碰撞以后写为准，
// 不会留下损坏的记录。
func (r *LinksRepo) Insert(ctx context.Context, link links.Link) error {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.Exec(dbctx, `
INSERT INTO links (slug,full_url,owner_id,attempts_limit,attempts,created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (slug) DO UPDATE SET
  full_url=EXCLUDED.full_url,
  owner_id=EXCLUDED.owner_id,
  attempts_limit=EXCLUDED.attempts_limit,
  attempts=EXCLUDED.attempts,
  created_at=EXCLUDED.created_at
`, link.Slug, link.FullURL, link.OwnerID, link.AttemptsLimit, link.Attempts, link.CreatedAt)
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	if r.filter != nil {
		r.filter.Add(link.Slug)
	}
	// 覆盖负缓存：创建成功后立刻清掉，避免此前的 "__nil__" 让短码暂时不可用。
	if r.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		r.cache.Clear(cacheCtx, link.Slug)
	}
	return nil
}

// IncrementAttempts 存储层原子自增，不做读-改-写。
func (r *LinksRepo) IncrementAttempts(ctx context.Context, slug string) error {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	tag, err := r.db.Exec(dbctx, "UPDATE links SET attempts=attempts+1 WHERE slug=$1", slug)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	if tag.RowsAffected() == 0 {
		// 查到之后、自增之前被并发删除了
		return links.ErrLinkNotFound
	}
	return nil
}

func (r *LinksRepo) UpdateLimit(ctx context.Context, slug string, limit *int) error {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	tag, err := r.db.Exec(dbctx, "UPDATE links SET attempts_limit=$1 WHERE slug=$2", limit, slug)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	if tag.RowsAffected() == 0 {
		return links.ErrLinkNotFound
	}
	return nil
}

func (r *LinksRepo) Delete(ctx context.Context, slug string) error {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if _, err := r.db.Exec(dbctx, "DELETE FROM links WHERE slug=$1", slug); err != nil {
		slog.Error(err.Error())
		return err
	}
	if r.cache != nil {
		r.cache.MarkMissing(ctx, slug)
	}
	return nil
}

// DeleteCreatedBefore 一条 DELETE 批量清过期记录，本身就是原子的。
func (r *LinksRepo) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	dbctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := r.db.Exec(dbctx, "DELETE FROM links WHERE created_at<$1", cutoff)
	if err != nil {
		slog.Error(err.Error())
		return 0, err
	}
	return tag.RowsAffected(), nil
}
