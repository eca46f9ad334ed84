package links

import (
	"context"
	"log/slog"
	"time"

	"linkshort.local/internal/platform/metrics"
)

// Sweeper 定时触发过期清理。与请求处理相互独立，按固定间隔运行。
type Sweeper struct {
	svc      *Service
	interval time.Duration
}

func NewSweeper(svc *Service, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval}
}

// Run 阻塞的清理循环，ctx 取消后退出。
// 每次只发一条批量 DELETE，失败只记日志，下个周期重试。
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			deleted, err := w.svc.CleanupExpired(sweepCtx)
			cancel()
			if err != nil {
				slog.Error("link cleanup failed", "err", err)
				continue
			}
			if deleted > 0 {
				metrics.LinksSwept.Add(float64(deleted))
				slog.Info("link cleanup", "deleted", deleted)
			}
		}
	}
}
