package httpmiddleware

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// RequestID 透传或生成请求序号，响应头里回写。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = generateRequestID()
			if id == "" {
				id = strconv.FormatInt(time.Now().UnixNano(), 10)
			}
			c.Request.Header.Set(requestIDHeader, id)
		}
		c.Header(requestIDHeader, id)

		c.Next()
	}
}

func generateRequestID() string {
	src := make([]byte, 16)
	if _, err := rand.Read(src); err != nil {
		return ""
	}
	return hex.EncodeToString(src)
}
