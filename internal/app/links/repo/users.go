package repo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"linkshort.local/internal/app/links"
)

// UsersRepo 是 links.UserStore 的 Postgres 实现。
// 用户只有一个 id：匿名创建短链时生成，之后只做存在性查找。
type UsersRepo struct {
	db *pgxpool.Pool
}

func NewUsersRepo(db *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (links.User, error) {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	var user links.User
	if err := r.db.QueryRow(dbctx, "SELECT id FROM users WHERE id=$1", id).Scan(&user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return links.User{}, links.ErrUserNotFound
		}
		slog.Error(err.Error())
		return links.User{}, err
	}
	return user, nil
}

func (r *UsersRepo) Create(ctx context.Context) (links.User, error) {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	user := links.User{ID: uuid.NewString()}
	if _, err := r.db.Exec(dbctx, "INSERT INTO users (id) VALUES ($1)", user.ID); err != nil {
		slog.Error(err.Error())
		return links.User{}, err
	}
	return user, nil
}
