package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/utils"
)

// HealthResponse 不健康时在统一错误结构上附加 status
type HealthResponse struct {
	Status string `json:"status"`
	utils.ErrorResponse
}

// Health 健康检查，存储不可用时返回 500
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	if err := h.Repos.Ping(c.Request.Context()); err != nil {
		h.Log.Error("健康检查失败", "error", err)
		c.JSON(http.StatusInternalServerError, HealthResponse{
			Status: "unhealthy",
			ErrorResponse: utils.ErrorResponse{
				Error:            "STORE_UNAVAILABLE",
				Message:          "storage ping failed",
				ProcessingTimeMs: utils.ElapsedMs(c),
				Timestamp:        utils.Timestamp(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": utils.Timestamp(),
	})
}
