package catalog

import (
	"time"

	"github.com/user/giftgenius/internal/model"
)

// ListResponse 礼物列表响应
type ListResponse struct {
	Gifts            []model.Gift `json:"gifts"`
	Pagination       Pagination   `json:"pagination"`
	Filters          Filter       `json:"filters"`
	SortBy           SortKey      `json:"sort_by"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
	Timestamp        string       `json:"timestamp"`
}

// NewListResponse 组装响应，耗时从 started 开始计算
func NewListResponse(res Result, q Query, started time.Time) ListResponse {
	gifts := res.Gifts
	if gifts == nil {
		gifts = []model.Gift{}
	}
	now := time.Now()
	return ListResponse{
		Gifts:            gifts,
		Pagination:       NewPagination(res.Total, len(gifts), q.Limit, q.Offset),
		Filters:          q.Filter,
		SortBy:           q.SortBy,
		ProcessingTimeMs: now.Sub(started).Milliseconds(),
		Timestamp:        now.UTC().Format(time.RFC3339),
	}
}
