package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"linkshort.local/internal/app/links"
	"linkshort.local/internal/app/links/stats"
)

// AdminAPI 管理端接口：手动触发清理、查单链统计。
type AdminAPI struct {
	svc    *links.Service
	reader *stats.Reader
}

func NewAdminAPI(svc *links.Service, reader *stats.Reader) *AdminAPI {
	return &AdminAPI{svc: svc, reader: reader}
}

// Cleanup 立即执行一轮过期清理，不等定时器。
// POST /admin/cleanup
func (a *AdminAPI) Cleanup(c *gin.Context) {
	deleted, err := a.svc.CleanupExpired(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// LinkStats 返回单个 slug 的跳转统计汇总。
// GET /admin/links/:slug/stats
func (a *AdminAPI) LinkStats(c *gin.Context) {
	if a.reader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats disabled"})
		return
	}
	summary, err := a.reader.Summarize(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
