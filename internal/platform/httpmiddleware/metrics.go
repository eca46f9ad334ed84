package httpmiddleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"linkshort.local/internal/platform/metrics"
)

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPInflightRequests.Inc()
		defer metrics.HTTPInflightRequests.Dec()
		// 指标 label 用路由模板（/:slug），不能用真实 path，否则 label 无限膨胀
		routePattern := c.FullPath()
		if routePattern == "" {
			routePattern = "UNMATCHED"
		}
		defer func() {
			duration := time.Since(start).Seconds()
			status := c.Writer.Status()
			metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, routePattern, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDurationSeconds.WithLabelValues(c.Request.Method, routePattern).Observe(duration)
		}()
		c.Next()
	}
}
