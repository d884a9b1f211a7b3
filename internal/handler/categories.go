package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/utils"
)

// ListCategories 分类统计
// GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	stats, err := h.Catalog.CategoryStats(c.Request.Context())
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, gin.H{
		"categories":         stats,
		"processing_time_ms": utils.ElapsedMs(c),
		"timestamp":          utils.Timestamp(),
	})
}
