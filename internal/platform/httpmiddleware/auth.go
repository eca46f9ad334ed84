package httpmiddleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"linkshort.local/internal/platform/auth"
)

// parseBearer 解析 Authorization 头里的 Bearer token，格式不对返回空串。
func parseBearer(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}

// AuthRequired 要求请求携带有效的 JWT。
func AuthRequired(ts auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := parseBearer(tokenStr)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claim, err := ts.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), auth.Identity{
			Subject: claim.Subject,
			Role:    claim.Role,
		}))
		c.Next()
	}
}

// RequireRole 要求上游 AuthRequired 已解析出指定角色。
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.GetIdentity(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if id.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
