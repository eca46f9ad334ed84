package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"linkshort.local/internal/app/links"
	"linkshort.local/internal/app/links/stats"
	"linkshort.local/internal/platform/httpmiddleware"
	"linkshort.local/internal/platform/metrics"
)

// X-User-Id 标识短链归属。创建时可以不带（服务端发新用户 id），
// 删改必须带。
const userIDHeader = "X-User-Id"

type LinksAPI struct {
	svc       *links.Service
	collector stats.Collector
}

func NewLinksAPI(svc *links.Service, collector stats.Collector) *LinksAPI {
	if collector == nil {
		collector = stats.NopCollector{}
	}
	return &LinksAPI{svc: svc, collector: collector}
}

type createRequest struct {
	URL   string `json:"url"`
	Limit *int   `json:"limit"`
}

type createResponse struct {
	UserID   string `json:"userId"`
	ShortURL string `json:"shortUrl"`
}

type editRequest struct {
	Limit *int `json:"limit"`
}

// Create 创建短链。
// POST /
func (a *LinksAPI) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := a.svc.CreateLink(c.Request.Context(), req.URL, req.Limit, c.GetHeader(userIDHeader))
	if err != nil {
		writeError(c, err)
		return
	}

	metrics.LinksCreated.Inc()
	c.JSON(http.StatusOK, createResponse{
		UserID:   res.OwnerID,
		ShortURL: res.ShortURL,
	})
}

// Redirect 解析短链并 302 跳转。
// GET /:slug
func (a *LinksAPI) Redirect(c *gin.Context) {
	slug := c.Param("slug")

	fullURL, err := a.svc.Resolve(c.Request.Context(), slug)
	if err != nil {
		writeError(c, err)
		return
	}

	metrics.LinkRedirects.Inc()
	a.collector.Collect(stats.ResolveEvent{
		Slug:       slug,
		ResolvedAt: time.Now(),
		IP:         httpmiddleware.ClientIP(c.Request),
		UserAgent:  c.Request.UserAgent(),
		Referer:    c.Request.Referer(),
	})

	c.Redirect(http.StatusFound, fullURL)
}

// Delete 删除自己的短链。
// DELETE /:slug
func (a *LinksAPI) Delete(c *gin.Context) {
	slug := c.Param("slug")

	if err := a.svc.Delete(c.Request.Context(), slug, c.GetHeader(userIDHeader)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "Link '" + slug + "' has been deleted"})
}

// Edit 修改自己短链的跳转次数上限。
// PUT /:slug
func (a *LinksAPI) Edit(c *gin.Context) {
	slug := c.Param("slug")

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := a.svc.Edit(c.Request.Context(), slug, c.GetHeader(userIDHeader), req.Limit); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "Link '" + slug + "' has been edited successfully"})
}
