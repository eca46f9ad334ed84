package httpmiddleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// TraceName 把 otelhttp 建好的 span 重命名为 "METHOD 路由模板"。
func TraceName() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		span.SetName(c.Request.Method + " " + c.FullPath())
		c.Next()
	}
}
