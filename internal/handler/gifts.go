package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/service"
	"github.com/user/giftgenius/internal/utils"
)

// ListGifts 礼物列表：筛选、排序、分页
// GET /api/gifts
func (h *Handler) ListGifts(c *gin.Context) {
	q, err := h.Catalog.ParseQuery(c.Request.URL.Query())
	if err != nil {
		utils.Error(c, err)
		return
	}

	res, err := h.Catalog.ListGifts(c.Request.Context(), q)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, catalog.NewListResponse(res, q, utils.StartTime(c)))
}

// GiftDetailResponse 礼物详情响应
type GiftDetailResponse struct {
	*service.GiftDetail
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	Timestamp        string `json:"timestamp"`
}

// GetGift 礼物详情
// GET /api/gifts/:id
func (h *Handler) GetGift(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.Catalog.GetGift(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, GiftDetailResponse{
		GiftDetail:       detail,
		ProcessingTimeMs: utils.ElapsedMs(c),
		Timestamp:        utils.Timestamp(),
	})
}
