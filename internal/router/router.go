package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/handler"
	"github.com/user/giftgenius/internal/logger"
	"github.com/user/giftgenius/internal/middleware"
	"github.com/user/giftgenius/internal/utils"
)

// NewEngine 创建 gin 引擎并按固定顺序挂载公共中间件：
// 日志、指标、panic 恢复，然后是 extra
func NewEngine(log *logger.Logger, metrics *middleware.Metrics, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(log))
	if metrics != nil {
		r.Use(metrics.Handler())
	}
	r.Use(middleware.Recovery())
	r.Use(extra...)
	return r
}

// RegisterRoutes 注册所有路由，metrics 为 nil 时不暴露 /metrics
func RegisterRoutes(r *gin.Engine, h *handler.Handler, metrics http.Handler) {
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		// 礼物目录
		api.GET("/gifts", h.ListGifts)
		api.GET("/gifts/:id", h.GetGift)
		api.GET("/categories", h.ListCategories)

		// 互动
		api.POST("/analytics/track", h.TrackEvent)
		api.POST("/testimonials/:id/helpful", h.MarkHelpful)
	}

	r.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "NOT_FOUND", "route not found")
	})
}
