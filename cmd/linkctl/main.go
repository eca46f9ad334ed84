package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"linkshort.local/internal/app/links"
	"linkshort.local/internal/app/links/repo"
	"linkshort.local/internal/platform/auth"
	"linkshort.local/internal/platform/config"
	"linkshort.local/internal/platform/db"
	"linkshort.local/internal/platform/migrate"
)

// linkctl 运维命令行：迁移、手动清理、签发管理 token。
// 配置和 api 共用同一套环境变量。
func main() {
	root := &cobra.Command{
		Use:          "linkctl",
		Short:        "短链服务运维工具",
		SilenceUsage: true,
	}
	root.AddCommand(migrateCmd(), cleanupCmd(), adminTokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行未应用的数据库迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			pool, err := db.New(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := migrate.Up(ctx, pool, dir)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("已是最新，无迁移可执行")
				return nil
			}
			for _, v := range applied {
				fmt.Println("applied:", v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "迁移文件目录（默认 ./migrations）")
	return cmd
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "立即删除过期短链",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			pool, err := db.New(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			// 不挂缓存和布隆过滤器，一次性任务直接打库
			svc := links.NewService(
				repo.NewLinksRepo(pool, nil, nil),
				repo.NewUsersRepo(pool),
				links.Config{TTL: cfg.LinkTTL, Scheme: cfg.URLScheme, HostName: cfg.URLHostName},
			)
			deleted, err := svc.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d expired links\n", deleted)
			return nil
		},
	}
}

func adminTokenCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "签发 admin 角色的 JWT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.JWTSecret == "change-me" {
				slog.Warn("JWT_SECRET 还是默认值，别在生产环境这么用")
			}
			ts, err := auth.NewHS256Service(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
			if err != nil {
				return err
			}
			token, err := ts.Sign(subject, "admin")
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "ops", "token 的 subject")
	return cmd
}
