package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/utils"
)

// MarkHelpful 评价“有帮助”投票
// POST /api/testimonials/:id/helpful
func (h *Handler) MarkHelpful(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	votes, err := h.Analytics.MarkHelpful(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, gin.H{"helpful_votes": votes})
}
