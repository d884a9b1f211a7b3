package catalog

import (
	"context"

	"github.com/user/giftgenius/internal/model"
	"golang.org/x/sync/errgroup"
)

// Store 目录存储抽象。实现方负责只返回上架礼物，
// 并按 sortBy 排序后截取 [offset, offset+limit)。
type Store interface {
	Find(ctx context.Context, f Filter, sortBy SortKey, limit, offset int) ([]model.Gift, error)
	Count(ctx context.Context, f Filter) (int64, error)
}

// Result 查询结果（未附加耗时和时间戳）
type Result struct {
	Gifts []model.Gift
	Total int64
}

// Execute 并发执行计数与分页查询
func Execute(ctx context.Context, store Store, q Query) (Result, error) {
	var (
		res   Result
		gifts []model.Gift
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = store.Count(gctx, q.Filter)
		return err
	})
	g.Go(func() error {
		var err error
		gifts, err = store.Find(gctx, q.Filter, q.SortBy, q.Limit, q.Offset)
		return err
	})
	if err := g.Wait(); err != nil {
		return res, err
	}
	if gifts == nil {
		gifts = []model.Gift{}
	}
	res.Gifts = gifts
	res.Total = total
	return res, nil
}

// Apply 在内存中完成筛选、排序与分页，返回当页数据和匹配总数。
// 输入切片不会被修改。
func Apply(gifts []model.Gift, q Query) ([]model.Gift, int64) {
	matched := Select(gifts, q.Filter)
	SortGifts(matched, q.SortBy)
	page := Paginate(matched, q.Limit, q.Offset)
	out := make([]model.Gift, len(page))
	copy(out, page)
	return out, int64(len(matched))
}

// Select 返回满足筛选条件的礼物副本，保持输入顺序
func Select(gifts []model.Gift, f Filter) []model.Gift {
	matched := make([]model.Gift, 0, len(gifts))
	for i := range gifts {
		if f.Match(&gifts[i]) {
			matched = append(matched, gifts[i])
		}
	}
	return matched
}
