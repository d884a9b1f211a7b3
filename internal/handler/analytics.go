package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/apperr"
	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/service"
	"github.com/user/giftgenius/internal/utils"
)

// TrackRequest 埋点请求
type TrackRequest struct {
	EventType string                 `json:"eventType" binding:"required,max=100"`
	GiftID    *uint                  `json:"giftId" binding:"omitempty,min=1"`
	SessionID string                 `json:"sessionId" binding:"required,max=100"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// TrackEvent 记录埋点。存储失败时返回 success=false，不返回 5xx。
// POST /api/analytics/track
func (h *Handler) TrackEvent(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperr.Validation("INVALID_REQUEST", "eventType and sessionId are required", err.Error()))
		return
	}

	id, ok := h.Analytics.Track(c.Request.Context(), service.TrackEvent{
		EventType: catalog.SanitizeString(req.EventType, 100),
		GiftID:    req.GiftID,
		SessionID: catalog.SanitizeString(req.SessionID, 100),
		Metadata:  req.Metadata,
	})
	if !ok {
		utils.Success(c, gin.H{"success": false})
		return
	}
	utils.Success(c, gin.H{"success": true, "id": id})
}
