package catalog

import (
	"sort"
	"strings"

	"github.com/user/giftgenius/internal/model"
)

// SortKey 排序方式
type SortKey string

const (
	SortSuccessRate SortKey = "success_rate"
	SortPriceLow    SortKey = "price_low"
	SortPriceHigh   SortKey = "price_high"
	SortNewest      SortKey = "newest"
	SortPopular     SortKey = "popular"

	DefaultSort = SortSuccessRate
)

// ParseSortKey 解析排序参数，未知值返回默认排序和 false
func ParseSortKey(s string) (SortKey, bool) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortSuccessRate, SortPriceLow, SortPriceHigh, SortNewest, SortPopular:
		return key, true
	default:
		return DefaultSort, false
	}
}

// Less 比较两个礼物在当前排序下的先后，相等时返回 false 以保持稳定
func (k SortKey) Less(a, b *model.Gift) bool {
	switch k {
	case SortPriceLow:
		return a.Price < b.Price
	case SortPriceHigh:
		return a.Price > b.Price
	case SortNewest:
		return a.CreatedAt.After(b.CreatedAt)
	case SortPopular:
		return a.TotalReviews > b.TotalReviews
	default:
		if a.SuccessRate != b.SuccessRate {
			return a.SuccessRate > b.SuccessRate
		}
		return a.TotalReviews > b.TotalReviews
	}
}

// OrderBy 返回对应的 SQL 排序子句。
// 末尾追加 id ASC，使数据库结果与内存中按插入顺序的稳定排序一致。
func (k SortKey) OrderBy() []string {
	switch k {
	case SortPriceLow:
		return []string{"price ASC", "id ASC"}
	case SortPriceHigh:
		return []string{"price DESC", "id ASC"}
	case SortNewest:
		return []string{"created_at DESC", "id ASC"}
	case SortPopular:
		return []string{"total_reviews DESC", "id ASC"}
	default:
		return []string{"success_rate DESC", "total_reviews DESC", "id ASC"}
	}
}

// SortGifts 原地稳定排序
func SortGifts(gifts []model.Gift, key SortKey) {
	sort.SliceStable(gifts, func(i, j int) bool {
		return key.Less(&gifts[i], &gifts[j])
	})
}
