package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100
	MaxOffset    = 10000
	MaxPrice     = 100000.0
)

// RelationshipStages 关系阶段枚举
var RelationshipStages = []string{"dating", "serious", "engaged", "married"}

var relationshipStageSet = NewCategorySet(RelationshipStages)

// Query 一次目录查询的全部输入
type Query struct {
	Filter Filter
	SortBy SortKey
	Limit  int
	Offset int
}

// Key 生成缓存键，同一组条件得到同一个键
func (q Query) Key() string {
	return q.Filter.Key() + "|sort=" + string(q.SortBy) +
		"|l=" + strconv.Itoa(q.Limit) + "|o=" + strconv.Itoa(q.Offset)
}

// Options 解析选项
type Options struct {
	Categories   *CategorySet
	DefaultLimit int
}

// FieldError 单个字段的校验问题
type FieldError struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// ParseQuery 将查询参数转换为 Query。
// 无法解析或不在白名单中的值被丢弃并记录在返回的 FieldError 中，
// 调用方决定忽略（宽松模式）还是拒绝请求（严格模式）。越界数值总是被截断到合法范围。
func ParseQuery(values url.Values, opts Options) (Query, []FieldError) {
	var problems []FieldError
	q := Query{
		SortBy: DefaultSort,
		Limit:  opts.DefaultLimit,
		Offset: 0,
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	q.Limit = clampInt(q.Limit, MinLimit, MaxLimit)

	if raw := values.Get("category"); raw != "" {
		category := strings.ToLower(SanitizeString(raw, MaxFieldLength))
		if category != "" {
			if opts.Categories.Contains(category) {
				q.Filter.Category = category
			} else {
				problems = append(problems, FieldError{Field: "category", Value: category, Reason: "unknown category"})
			}
		}
	}

	if v, ok, bad := parsePrice(values, "minPrice"); ok {
		q.Filter.MinPrice = &v
	} else if bad != nil {
		problems = append(problems, *bad)
	}
	if v, ok, bad := parsePrice(values, "maxPrice"); ok {
		q.Filter.MaxPrice = &v
	} else if bad != nil {
		problems = append(problems, *bad)
	}

	q.Filter.Occasion = SanitizeString(values.Get("occasion"), MaxFieldLength)
	if raw := values.Get("relationshipStage"); raw != "" {
		stage := strings.ToLower(SanitizeString(raw, MaxFieldLength))
		if stage != "" {
			if relationshipStageSet.Contains(stage) {
				q.Filter.RelationshipStage = stage
			} else {
				problems = append(problems, FieldError{Field: "relationshipStage", Value: stage, Reason: "unknown relationship stage"})
			}
		}
	}
	q.Filter.Search = SanitizeString(values.Get("search"), MaxSearchLength)

	if raw := strings.TrimSpace(values.Get("minSuccessRate")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			v = clampInt(v, 0, 100)
			q.Filter.MinSuccessRate = &v
		} else {
			problems = append(problems, FieldError{Field: "minSuccessRate", Value: raw, Reason: "not an integer"})
		}
	}

	if raw := strings.TrimSpace(values.Get("sortBy")); raw != "" {
		if key, ok := ParseSortKey(raw); ok {
			q.SortBy = key
		} else {
			problems = append(problems, FieldError{Field: "sortBy", Value: SanitizeString(raw, MaxFieldLength), Reason: "unknown sort key"})
		}
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			q.Limit = clampInt(v, MinLimit, MaxLimit)
		} else {
			problems = append(problems, FieldError{Field: "limit", Value: raw, Reason: "not an integer"})
		}
	}
	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			q.Offset = clampInt(v, 0, MaxOffset)
		} else {
			problems = append(problems, FieldError{Field: "offset", Value: raw, Reason: "not an integer"})
		}
	}

	return q, problems
}

func parsePrice(values url.Values, field string) (float64, bool, *FieldError) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, &FieldError{Field: field, Value: SanitizeString(raw, MaxFieldLength), Reason: "not a number"}
	}
	return math.Min(math.Max(v, 0), MaxPrice), true, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
