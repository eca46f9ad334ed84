package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"linkshort.local/internal/app/links"
)

// statusFor 把领域错误翻译成 HTTP 状态码，未知错误一律 500。
func statusFor(err error) int {
	switch {
	case errors.Is(err, links.ErrInvalidURL), errors.Is(err, links.ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, links.ErrUserNotFound), errors.Is(err, links.ErrOwnerNotIdentified):
		return http.StatusUnauthorized
	case errors.Is(err, links.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, links.ErrLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, links.ErrDuplicateLink):
		return http.StatusConflict
	case errors.Is(err, links.ErrLinkExpired), errors.Is(err, links.ErrLinkExhausted):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(err.Error())
		// 内部错误不往外透细节
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
