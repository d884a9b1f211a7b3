package repository

import (
	"context"

	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/model"
)

// GiftStore 礼物存储。所有读取只返回上架礼物。
type GiftStore interface {
	catalog.Store
	// FindByID 不存在或已下架时返回 nil, nil
	FindByID(ctx context.Context, id uint) (*model.Gift, error)
	FindSimilar(ctx context.Context, gift *model.Gift, limit int) ([]model.Gift, error)
	CategoryStats(ctx context.Context) ([]model.CategoryStats, error)
	// UpdateSuccessStats 写回聚合结果，stats 中缺失的礼物归零
	UpdateSuccessStats(ctx context.Context, stats map[uint]catalog.SuccessStats) error
	CountAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, gifts []*model.Gift) error
}

// TestimonialStore 评价存储
type TestimonialStore interface {
	ListByGift(ctx context.Context, giftID uint) ([]model.Testimonial, error)
	ListRatings(ctx context.Context) ([]model.Testimonial, error)
	// IncrementHelpful 原子地 +1 并返回最新票数
	IncrementHelpful(ctx context.Context, id uint) (int, error)
	Create(ctx context.Context, testimonials []*model.Testimonial) error
}

// AnalyticsStore 埋点事件存储（只追加）
type AnalyticsStore interface {
	Record(ctx context.Context, event *model.AnalyticsEvent) error
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// Repositories 仓库集合，持有底层连接的生命周期
type Repositories struct {
	Gift        GiftStore
	Testimonial TestimonialStore
	Analytics   AnalyticsStore

	ping  func(ctx context.Context) error
	close func() error
	// begin 在事务中执行 fn；为 nil 时直接执行
	begin func(ctx context.Context, r *Repositories, fn func(tx *Repositories) error) error
}

// WithTx 在同一事务中执行 fn，fn 返回错误时全部回滚
func (r *Repositories) WithTx(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.begin == nil {
		return fn(r)
	}
	return r.begin(ctx, r, fn)
}

// Ping 检查存储是否可用
func (r *Repositories) Ping(ctx context.Context) error {
	if r.ping == nil {
		return nil
	}
	return r.ping(ctx)
}

// Close 释放底层连接
func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}
