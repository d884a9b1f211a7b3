package repository

import (
	"context"

	"github.com/user/giftgenius/internal/apperr"
	"github.com/user/giftgenius/internal/model"
	"gorm.io/gorm"
)

// TestimonialRepository 评价仓库
type TestimonialRepository struct {
	db *gorm.DB
}

// NewTestimonialRepository 创建评价仓库
func NewTestimonialRepository(db *gorm.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

// ListByGift 获取礼物的评价，最有帮助的在前
func (r *TestimonialRepository) ListByGift(ctx context.Context, giftID uint) ([]model.Testimonial, error) {
	var testimonials []model.Testimonial
	err := r.db.WithContext(ctx).
		Where("gift_id = ?", giftID).
		Order("helpful_votes DESC").
		Order("created_at DESC").
		Order("id ASC").
		Find(&testimonials).Error
	return testimonials, err
}

// ListRatings 获取全部评价的评分，用于聚合
func (r *TestimonialRepository) ListRatings(ctx context.Context) ([]model.Testimonial, error) {
	var testimonials []model.Testimonial
	err := r.db.WithContext(ctx).
		Model(&model.Testimonial{}).
		Select("id", "gift_id", "partner_rating").
		Find(&testimonials).Error
	return testimonials, err
}

// IncrementHelpful 使用单条 UPDATE 自增，避免并发投票丢失
func (r *TestimonialRepository) IncrementHelpful(ctx context.Context, id uint) (int, error) {
	var votes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Testimonial{}).
			Where("id = ?", id).
			UpdateColumn("helpful_votes", gorm.Expr("helpful_votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("TESTIMONIAL_NOT_FOUND", "testimonial not found")
		}
		return tx.Model(&model.Testimonial{}).
			Select("helpful_votes").
			Where("id = ?", id).
			Scan(&votes).Error
	})
	return votes, err
}

// Create 批量创建评价
func (r *TestimonialRepository) Create(ctx context.Context, testimonials []*model.Testimonial) error {
	if len(testimonials) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(testimonials).Error
}
