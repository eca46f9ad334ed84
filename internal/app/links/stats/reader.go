package stats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Summary 单个 slug 的跳转统计汇总。
type Summary struct {
	Slug          string     `json:"slug"`
	TotalResolves int64      `json:"totalResolves"`
	UniqueIPs     int64      `json:"uniqueIps"`
	FirstResolved *time.Time `json:"firstResolved,omitempty"`
	LastResolved  *time.Time `json:"lastResolved,omitempty"`
}

// Reader 查询明细表，给管理端统计接口用。
type Reader struct {
	db *pgxpool.Pool
}

func NewReader(db *pgxpool.Pool) *Reader {
	return &Reader{db: db}
}

func (r *Reader) Summarize(ctx context.Context, slug string) (Summary, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s := Summary{Slug: slug}
	err := r.db.QueryRow(dbctx, `
SELECT count(*), count(DISTINCT ip), min(resolved_at), max(resolved_at)
FROM resolve_stats WHERE slug=$1
`, slug).Scan(&s.TotalResolves, &s.UniqueIPs, &s.FirstResolved, &s.LastResolved)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		slog.Error(err.Error())
		return Summary{}, err
	}
	return s, nil
}
