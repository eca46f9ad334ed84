package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Up 按文件名顺序应用 dir 下的 *.sql，已应用的版本记录在 schema_migrations 里跳过。
func Up(ctx context.Context, db *pgxpool.Pool, dir string) (applied []string, err error) {
	dir, err = resolveDir(dir)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var done bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, name).Scan(&done); err != nil {
			return nil, err
		}
		if done {
			continue
		}
		if err := apply(ctx, db, filepath.Join(dir, name), name); err != nil {
			return nil, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}

func apply(ctx context.Context, db *pgxpool.Pool, path, version string) error {
	sqlBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", version, err)
	}

	// 整个文件作为一批执行；文件内容靠 IF NOT EXISTS 保证幂等。
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("apply migration %s: %w", version, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1,$2)`, version, time.Now()); err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	return tx.Commit(ctx)
}

func resolveDir(opt string) (string, error) {
	if strings.TrimSpace(opt) != "" {
		return filepath.Clean(opt), nil
	}

	// 默认找 CWD/migrations，其次可执行文件旁边的 migrations。
	if dir, err := filepath.Abs("migrations"); err == nil {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return dir, nil
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve migrations dir: %w", err)
	}
	dir := filepath.Join(filepath.Dir(exe), "migrations")
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return "", fmt.Errorf("migrations dir not found (tried %s)", dir)
	}
	return dir, nil
}
