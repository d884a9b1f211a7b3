package repository

import (
	"context"
	"math"
	"strings"

	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/model"
	"gorm.io/gorm"
)

// onReadColumns 实时聚合时的查询列，成功率与 catalog.ComputeSuccess 保持一致
const onReadColumns = `g.id, g.title, g.description, g.price, g.category, g.occasion, g.relationship_stage,
	g.image_url, g.affiliate_url, g.retailer, g.delivery_days, g.is_active, g.created_at, g.updated_at,
	COALESCE(CAST(ROUND(100.0 * SUM(CASE WHEN t.partner_rating >= 4 THEN 1 ELSE 0 END) / NULLIF(COUNT(t.id), 0)) AS INTEGER), 0) AS success_rate,
	COUNT(t.id) AS total_reviews`

// GiftRepository 礼物仓库
type GiftRepository struct {
	db   *gorm.DB
	mode catalog.AggregateMode
}

// NewGiftRepository 创建礼物仓库
func NewGiftRepository(db *gorm.DB, mode catalog.AggregateMode) *GiftRepository {
	return &GiftRepository{db: db, mode: mode}
}

// base 返回礼物数据源：预计算模式直接读表，实时模式读取聚合子查询
func (r *GiftRepository) base(ctx context.Context) *gorm.DB {
	if r.mode != catalog.ModeOnRead {
		return r.db.WithContext(ctx).Model(&model.Gift{})
	}
	sub := r.db.Table("gifts AS g").
		Select(onReadColumns).
		Joins("LEFT JOIN testimonials t ON t.gift_id = g.id").
		Group("g.id")
	return r.db.WithContext(ctx).Table("(?) AS gifts", sub)
}

// applyFilter 将筛选条件翻译为 WHERE 子句，语义与 catalog.Filter.Match 一致
func applyFilter(db *gorm.DB, f catalog.Filter) *gorm.DB {
	db = db.Where("is_active = ?", true)
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		db = db.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("price <= ?", *f.MaxPrice)
	}
	if f.Occasion != "" {
		db = db.Where("occasion = ?", f.Occasion)
	}
	if f.RelationshipStage != "" {
		db = db.Where("relationship_stage = ?", f.RelationshipStage)
	}
	if f.MinSuccessRate != nil {
		db = db.Where("success_rate >= ?", *f.MinSuccessRate)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.SearchTerm()) + "%"
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Find 按条件分页查询
func (r *GiftRepository) Find(ctx context.Context, f catalog.Filter, sortBy catalog.SortKey, limit, offset int) ([]model.Gift, error) {
	db := applyFilter(r.base(ctx), f)
	for _, order := range sortBy.OrderBy() {
		db = db.Order(order)
	}
	var gifts []model.Gift
	err := db.Limit(limit).Offset(offset).Find(&gifts).Error
	return gifts, err
}

// Count 统计满足条件的礼物数
func (r *GiftRepository) Count(ctx context.Context, f catalog.Filter) (int64, error) {
	var total int64
	err := applyFilter(r.base(ctx), f).Count(&total).Error
	return total, err
}

// FindByID 根据 ID 查找上架礼物
func (r *GiftRepository) FindByID(ctx context.Context, id uint) (*model.Gift, error) {
	var gifts []model.Gift
	err := r.base(ctx).
		Where("id = ? AND is_active = ?", id, true).
		Limit(1).
		Find(&gifts).Error
	if err != nil {
		return nil, err
	}
	if len(gifts) == 0 {
		return nil, nil
	}
	return &gifts[0], nil
}

// FindSimilar 同分类的其他上架礼物，按成功率排序
func (r *GiftRepository) FindSimilar(ctx context.Context, gift *model.Gift, limit int) ([]model.Gift, error) {
	db := r.base(ctx).
		Where("is_active = ? AND category = ? AND id <> ?", true, gift.Category, gift.ID)
	for _, order := range catalog.SortSuccessRate.OrderBy() {
		db = db.Order(order)
	}
	var gifts []model.Gift
	err := db.Limit(limit).Find(&gifts).Error
	return gifts, err
}

// CategoryStats 按分类统计上架礼物
func (r *GiftRepository) CategoryStats(ctx context.Context) ([]model.CategoryStats, error) {
	var stats []model.CategoryStats
	err := r.base(ctx).
		Select("category, COUNT(*) AS count, MIN(price) AS min_price, MAX(price) AS max_price, AVG(success_rate) AS avg_success_rate").
		Where("is_active = ?", true).
		Group("category").
		Order("category ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].AvgSuccessRate = math.Round(stats[i].AvgSuccessRate*10) / 10
	}
	return stats, nil
}

// UpdateSuccessStats 在一个事务内写回全部礼物的聚合结果
func (r *GiftRepository) UpdateSuccessStats(ctx context.Context, stats map[uint]catalog.SuccessStats) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []model.Gift
		if err := tx.Model(&model.Gift{}).Select("id", "success_rate", "total_reviews").Find(&current).Error; err != nil {
			return err
		}
		for _, g := range current {
			s := stats[g.ID]
			if g.SuccessRate == s.SuccessRate && g.TotalReviews == s.TotalReviews {
				continue
			}
			err := tx.Model(&model.Gift{}).
				Where("id = ?", g.ID).
				UpdateColumns(map[string]interface{}{
					"success_rate":  s.SuccessRate,
					"total_reviews": s.TotalReviews,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// CountAll 统计全部礼物（含下架）
func (r *GiftRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Gift{}).Count(&total).Error
	return total, err
}

// Create 批量创建礼物
func (r *GiftRepository) Create(ctx context.Context, gifts []*model.Gift) error {
	if len(gifts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(gifts).Error
}
