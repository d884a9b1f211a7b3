package catalog

// Pagination 分页信息
type Pagination struct {
	Total   int64 `json:"total"`
	Count   int   `json:"count"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
	// Page 从 1 开始；offset 不是 limit 的整数倍时仅供参考
	Page int `json:"page"`
}

// NewPagination 根据总数和本页条数计算分页信息
func NewPagination(total int64, count, limit, offset int) Pagination {
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return Pagination{
		Total:   total,
		Count:   count,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+count) < total,
		Page:    page,
	}
}

// Paginate 截取 [offset, offset+limit) 区间
func Paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) || limit <= 0 {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
