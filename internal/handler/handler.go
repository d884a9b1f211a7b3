package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/logger"
	"github.com/user/giftgenius/internal/repository"
	"github.com/user/giftgenius/internal/service"
	"github.com/user/giftgenius/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos     *repository.Repositories
	Catalog   *service.CatalogService
	Analytics *service.AnalyticsService
	Log       *logger.Logger
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, catalogSvc *service.CatalogService, analyticsSvc *service.AnalyticsService, log *logger.Logger) *Handler {
	return &Handler{
		Repos:     repos,
		Catalog:   catalogSvc,
		Analytics: analyticsSvc,
		Log:       log,
	}
}

// parseID 解析路径中的正整数 ID，失败时已写入 400 响应
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequest(c, "INVALID_ID", "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
