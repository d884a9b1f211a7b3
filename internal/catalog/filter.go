package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/user/giftgenius/internal/model"
)

// Filter 已校验的筛选条件，所有字段之间为 AND 关系。
// 零值字段表示未启用该条件；is_active 始终隐式生效。
type Filter struct {
	Category          string   `json:"category,omitempty"`
	MinPrice          *float64 `json:"minPrice,omitempty"`
	MaxPrice          *float64 `json:"maxPrice,omitempty"`
	Occasion          string   `json:"occasion,omitempty"`
	RelationshipStage string   `json:"relationshipStage,omitempty"`
	MinSuccessRate    *int     `json:"minSuccessRate,omitempty"`
	Search            string   `json:"search,omitempty"`
}

// Match 判断礼物是否满足全部筛选条件
func (f Filter) Match(g *model.Gift) bool {
	if g == nil || !g.IsActive {
		return false
	}
	if f.Category != "" && g.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && g.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && g.Price > *f.MaxPrice {
		return false
	}
	if f.Occasion != "" && g.Occasion != f.Occasion {
		return false
	}
	if f.RelationshipStage != "" && g.RelationshipStage != f.RelationshipStage {
		return false
	}
	if f.MinSuccessRate != nil && g.SuccessRate < *f.MinSuccessRate {
		return false
	}
	if f.Search != "" {
		needle := f.SearchTerm()
		if !strings.Contains(strings.ToLower(g.Title), needle) &&
			!strings.Contains(strings.ToLower(g.Description), needle) &&
			!strings.Contains(strings.ToLower(g.Category), needle) {
			return false
		}
	}
	return true
}

// SearchTerm 返回小写的搜索词
func (f Filter) SearchTerm() string {
	return strings.ToLower(f.Search)
}

// Key 生成稳定的缓存键
func (f Filter) Key() string {
	parts := []string{
		"c=" + f.Category,
		"o=" + f.Occasion,
		"r=" + f.RelationshipStage,
		"s=" + f.SearchTerm(),
	}
	if f.MinPrice != nil {
		parts = append(parts, "min="+strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		parts = append(parts, "max="+strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.MinSuccessRate != nil {
		parts = append(parts, "sr="+strconv.Itoa(*f.MinSuccessRate))
	}
	return strings.Join(parts, "&")
}

// CategorySet 分类白名单
type CategorySet struct {
	allowed map[string]struct{}
}

// NewCategorySet 从配置列表构建白名单，统一小写并去重
func NewCategorySet(categories []string) *CategorySet {
	set := &CategorySet{allowed: make(map[string]struct{}, len(categories))}
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			set.allowed[c] = struct{}{}
		}
	}
	return set
}

// Contains 判断分类是否在白名单内
func (s *CategorySet) Contains(category string) bool {
	if s == nil {
		return false
	}
	_, ok := s.allowed[category]
	return ok
}

// List 返回排序后的分类列表
func (s *CategorySet) List() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.allowed))
	for c := range s.allowed {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
