package repository

import (
	"context"
	"time"

	"github.com/user/giftgenius/internal/model"
	"gorm.io/gorm"
)

// AnalyticsRepository 埋点事件仓库
type AnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建埋点仓库
func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Record 追加一条事件
func (r *AnalyticsRepository) Record(ctx context.Context, event *model.AnalyticsEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// DeleteOlderThan 清理超过指定天数的事件
func (r *AnalyticsRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.AnalyticsEvent{})
	return result.RowsAffected, result.Error
}
