package httpmiddleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"linkshort.local/internal/platform/ratelimit"
)

var rateLimitMemberSeq uint64

func RateLimit(limiter *ratelimit.Limiter, prefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		ip := ClientIP(c.Request)

		var builder strings.Builder
		builder.WriteString("rl:")
		builder.WriteString(prefix)
		builder.WriteString(":")
		builder.WriteString(ip)
		key := builder.String()

		// member 必须每次请求唯一，UnixNano 在虚拟化环境可能短时间重复，加序列号保证。
		member := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + strconv.FormatUint(atomic.AddUint64(&rateLimitMemberSeq, 1), 10)
		rlCtx, cancel := context.WithTimeout(c.Request.Context(), 50*time.Millisecond)
		defer cancel()
		allowed, retryAfter, err := limiter.Allow(rlCtx, key, limit, window, member)
		if err != nil {
			slog.Error("rate limit check failed", "err", err)
			c.Next() // Redis 故障时放行
			return
		}
		if !allowed {
			if retryAfter > 0 {
				// Retry-After 标准语义是秒，向上取整。
				secs := int64((retryAfter + time.Second - 1) / time.Second)
				c.Header("Retry-After", strconv.FormatInt(secs, 10))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
