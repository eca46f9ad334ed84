package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"linkshort.local/internal/platform/auth"
	"linkshort.local/internal/platform/httpmiddleware"
	"linkshort.local/internal/platform/ratelimit"
)

// RateLimits 各路由组的限流配置，limiter 为 nil 时整体关闭。
type RateLimits struct {
	CreatePerMin   int
	RedirectPerMin int
	MutatePerMin   int
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		CreatePerMin:   10,
		RedirectPerMin: 100,
		MutatePerMin:   30,
	}
}

// RegisterRoutes 挂载公开路由。
//
// 根路径既是创建入口（POST /）又是跳转入口（GET /:slug），
// 路由表要小心：/healthz 这类保留路径必须先注册，gin 的
// 参数路由不会吃掉已注册的静态路径。
func RegisterRoutes(r *gin.Engine, api *LinksAPI, limiter *ratelimit.Limiter, limits RateLimits) {
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.POST("/",
		httpmiddleware.RateLimit(limiter, "create", limits.CreatePerMin, time.Minute),
		api.Create)
	r.GET("/:slug",
		httpmiddleware.RateLimit(limiter, "redirect", limits.RedirectPerMin, time.Minute),
		api.Redirect)
	r.DELETE("/:slug",
		httpmiddleware.RateLimit(limiter, "mutate", limits.MutatePerMin, time.Minute),
		api.Delete)
	r.PUT("/:slug",
		httpmiddleware.RateLimit(limiter, "mutate", limits.MutatePerMin, time.Minute),
		api.Edit)
}

// RegisterAdmin 挂载管理路由，JWT + admin 角色。
func RegisterAdmin(r *gin.Engine, api *AdminAPI, ts auth.TokenService) {
	grp := r.Group("/admin",
		httpmiddleware.AuthRequired(ts),
		httpmiddleware.RequireRole("admin"))
	grp.POST("/cleanup", api.Cleanup)
	grp.GET("/links/:slug/stats", api.LinkStats)
}
