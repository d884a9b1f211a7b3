package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/user/giftgenius/internal/model"
)

// SuccessThreshold 评分不低于该值视为“成功”
const SuccessThreshold = 4

// SuccessStats 单个礼物的聚合结果
type SuccessStats struct {
	SuccessRate  int `json:"success_rate"`
	TotalReviews int `json:"total_reviews"`
}

// ComputeSuccess 计算 round(100 * 成功数 / 总数)；没有评价时两项均为 0
func ComputeSuccess(ratings []int) SuccessStats {
	if len(ratings) == 0 {
		return SuccessStats{}
	}
	success := 0
	for _, r := range ratings {
		if r >= SuccessThreshold {
			success++
		}
	}
	return SuccessStats{
		SuccessRate:  int(math.Round(100 * float64(success) / float64(len(ratings)))),
		TotalReviews: len(ratings),
	}
}

// AggregateByGift 按礼物分组计算聚合结果，没有评价的礼物不会出现在结果中
func AggregateByGift(testimonials []model.Testimonial) map[uint]SuccessStats {
	ratings := make(map[uint][]int)
	for _, t := range testimonials {
		ratings[t.GiftID] = append(ratings[t.GiftID], t.PartnerRating)
	}
	out := make(map[uint]SuccessStats, len(ratings))
	for giftID, rs := range ratings {
		out[giftID] = ComputeSuccess(rs)
	}
	return out
}

// ApplyStats 将聚合结果写回礼物，缺失的礼物归零
func ApplyStats(gifts []model.Gift, stats map[uint]SuccessStats) {
	for i := range gifts {
		s := stats[gifts[i].ID]
		gifts[i].SuccessRate = s.SuccessRate
		gifts[i].TotalReviews = s.TotalReviews
	}
}

// AggregateMode 成功率的计算方式
type AggregateMode string

const (
	// ModePrecomputed 定时批量重算并落库，读取时直接使用存储值
	ModePrecomputed AggregateMode = "precomputed"
	// ModeOnRead 查询时实时聚合
	ModeOnRead AggregateMode = "on_read"
)

// ParseAggregateMode 解析配置值
func ParseAggregateMode(s string) (AggregateMode, error) {
	switch mode := AggregateMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case ModePrecomputed, ModeOnRead:
		return mode, nil
	case "":
		return ModePrecomputed, nil
	default:
		return "", fmt.Errorf("未知的成功率聚合模式: %q", s)
	}
}
