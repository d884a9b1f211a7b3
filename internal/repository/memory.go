package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/user/giftgenius/internal/apperr"
	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/model"
)

// MemoryStore 内存存储，同时实现礼物、评价和埋点三类仓库接口
type MemoryStore struct {
	mu   sync.RWMutex
	mode catalog.AggregateMode

	gifts        []model.Gift // 按 ID 递增
	testimonials []model.Testimonial
	events       []model.AnalyticsEvent

	nextGiftID        uint
	nextTestimonialID uint
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(mode catalog.AggregateMode) *MemoryStore {
	return &MemoryStore{mode: mode, nextGiftID: 1, nextTestimonialID: 1}
}

// NewMemoryRepositories 基于内存存储的仓库集合
func NewMemoryRepositories(mode catalog.AggregateMode) *Repositories {
	s := NewMemoryStore(mode)
	return &Repositories{
		Gift:        s,
		Testimonial: memoryTestimonials{s},
		Analytics:   s,
		begin: func(ctx context.Context, r *Repositories, fn func(tx *Repositories) error) error {
			return s.withTx(func() error { return fn(r) })
		},
	}
}

// withTx fn 失败时把礼物和评价恢复到执行前的快照
func (s *MemoryStore) withTx(fn func() error) error {
	s.mu.RLock()
	gifts := append([]model.Gift(nil), s.gifts...)
	testimonials := append([]model.Testimonial(nil), s.testimonials...)
	nextGiftID, nextTestimonialID := s.nextGiftID, s.nextTestimonialID
	s.mu.RUnlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.gifts, s.testimonials = gifts, testimonials
		s.nextGiftID, s.nextTestimonialID = nextGiftID, nextTestimonialID
		s.mu.Unlock()
		return err
	}
	return nil
}

// memoryTestimonials 评价视图，Create 写入评价而非礼物
type memoryTestimonials struct{ *MemoryStore }

// Create 批量创建评价
func (m memoryTestimonials) Create(ctx context.Context, testimonials []*model.Testimonial) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.createTestimonials(testimonials)
	return nil
}

// snapshot 返回礼物副本；实时模式下附带即时聚合结果。调用方需持有读锁。
func (s *MemoryStore) snapshot() []model.Gift {
	out := make([]model.Gift, len(s.gifts))
	copy(out, s.gifts)
	if s.mode == catalog.ModeOnRead {
		catalog.ApplyStats(out, catalog.AggregateByGift(s.testimonials))
	}
	return out
}

// Find 按条件分页查询
func (s *MemoryStore) Find(ctx context.Context, f catalog.Filter, sortBy catalog.SortKey, limit, offset int) ([]model.Gift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	page, _ := catalog.Apply(snap, catalog.Query{Filter: f, SortBy: sortBy, Limit: limit, Offset: offset})
	return page, nil
}

// Count 统计满足条件的礼物数
func (s *MemoryStore) Count(ctx context.Context, f catalog.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	return int64(len(catalog.Select(snap, f))), nil
}

// FindByID 根据 ID 查找上架礼物
func (s *MemoryStore) FindByID(ctx context.Context, id uint) (*model.Gift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	for i := range snap {
		if snap[i].ID == id && snap[i].IsActive {
			g := snap[i]
			return &g, nil
		}
	}
	return nil, nil
}

// FindSimilar 同分类的其他上架礼物
func (s *MemoryStore) FindSimilar(ctx context.Context, gift *model.Gift, limit int) ([]model.Gift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	candidates := catalog.Select(snap, catalog.Filter{Category: gift.Category})
	others := candidates[:0]
	for _, g := range candidates {
		if g.ID != gift.ID {
			others = append(others, g)
		}
	}
	catalog.SortGifts(others, catalog.SortSuccessRate)
	return catalog.Paginate(others, limit, 0), nil
}

// CategoryStats 按分类统计上架礼物
func (s *MemoryStore) CategoryStats(ctx context.Context) ([]model.CategoryStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	byCategory := make(map[string]*model.CategoryStats)
	rateSum := make(map[string]int)
	for _, g := range catalog.Select(snap, catalog.Filter{}) {
		st, ok := byCategory[g.Category]
		if !ok {
			st = &model.CategoryStats{Category: g.Category, MinPrice: g.Price, MaxPrice: g.Price}
			byCategory[g.Category] = st
		}
		st.Count++
		if g.Price < st.MinPrice {
			st.MinPrice = g.Price
		}
		if g.Price > st.MaxPrice {
			st.MaxPrice = g.Price
		}
		rateSum[g.Category] += g.SuccessRate
	}

	out := make([]model.CategoryStats, 0, len(byCategory))
	for category, st := range byCategory {
		avg := float64(rateSum[category]) / float64(st.Count)
		st.AvgSuccessRate = math.Round(avg*10) / 10
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// UpdateSuccessStats 写回聚合结果
func (s *MemoryStore) UpdateSuccessStats(ctx context.Context, stats map[uint]catalog.SuccessStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	catalog.ApplyStats(s.gifts, stats)
	return nil
}

// CountAll 统计全部礼物（含下架）
func (s *MemoryStore) CountAll(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.gifts)), nil
}

// Create 批量创建礼物，回填 ID
func (s *MemoryStore) Create(ctx context.Context, gifts []*model.Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, g := range gifts {
		if g.ID == 0 {
			g.ID = s.nextGiftID
		}
		if g.ID >= s.nextGiftID {
			s.nextGiftID = g.ID + 1
		}
		if g.CreatedAt.IsZero() {
			g.CreatedAt = now
		}
		g.UpdatedAt = now
		s.gifts = append(s.gifts, *g)
	}
	sort.SliceStable(s.gifts, func(i, j int) bool { return s.gifts[i].ID < s.gifts[j].ID })
	return nil
}

// ListByGift 获取礼物的评价，最有帮助的在前
func (s *MemoryStore) ListByGift(ctx context.Context, giftID uint) ([]model.Testimonial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Testimonial, 0)
	for _, t := range s.testimonials {
		if t.GiftID == giftID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HelpfulVotes != out[j].HelpfulVotes {
			return out[i].HelpfulVotes > out[j].HelpfulVotes
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListRatings 获取全部评价
func (s *MemoryStore) ListRatings(ctx context.Context) ([]model.Testimonial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Testimonial, len(s.testimonials))
	copy(out, s.testimonials)
	return out, nil
}

// IncrementHelpful 在写锁内自增
func (s *MemoryStore) IncrementHelpful(ctx context.Context, id uint) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.testimonials {
		if s.testimonials[i].ID == id {
			s.testimonials[i].HelpfulVotes++
			return s.testimonials[i].HelpfulVotes, nil
		}
	}
	return 0, apperr.NotFound("TESTIMONIAL_NOT_FOUND", "testimonial not found")
}

// createTestimonials 追加评价，回填 ID
func (s *MemoryStore) createTestimonials(testimonials []*model.Testimonial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, t := range testimonials {
		if t.ID == 0 {
			t.ID = s.nextTestimonialID
		}
		if t.ID >= s.nextTestimonialID {
			s.nextTestimonialID = t.ID + 1
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		s.testimonials = append(s.testimonials, *t)
	}
}

// Record 追加一条事件
func (s *MemoryStore) Record(ctx context.Context, event *model.AnalyticsEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	s.events = append(s.events, *event)
	return nil
}

// DeleteOlderThan 清理超过指定天数的事件
func (s *MemoryStore) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -days)
	kept := s.events[:0]
	for _, e := range s.events {
		if !e.CreatedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := int64(len(s.events) - len(kept))
	s.events = kept
	return removed, nil
}

// Events 返回已记录事件的副本
func (s *MemoryStore) Events() []model.AnalyticsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AnalyticsEvent, len(s.events))
	copy(out, s.events)
	return out
}
