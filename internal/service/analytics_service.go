package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/user/giftgenius/internal/apperr"
	"github.com/user/giftgenius/internal/logger"
	"github.com/user/giftgenius/internal/model"
	"github.com/user/giftgenius/internal/repository"
	"gorm.io/datatypes"
)

// TrackEvent 一条待记录的埋点
type TrackEvent struct {
	EventType string
	GiftID    *uint
	SessionID string
	Metadata  map[string]interface{}
}

// AnalyticsService 埋点与评价互动
type AnalyticsService struct {
	analytics    repository.AnalyticsStore
	testimonials repository.TestimonialStore
	log          *logger.Logger
}

// NewAnalyticsService 创建埋点服务
func NewAnalyticsService(repos *repository.Repositories, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		analytics:    repos.Analytics,
		testimonials: repos.Testimonial,
		log:          log.With("service", "AnalyticsService"),
	}
}

// Track 记录埋点。写入失败只记录日志并返回 false，不影响调用方流程。
func (s *AnalyticsService) Track(ctx context.Context, ev TrackEvent) (string, bool) {
	event := &model.AnalyticsEvent{
		ID:        uuid.NewString(),
		EventType: ev.EventType,
		GiftID:    ev.GiftID,
		SessionID: ev.SessionID,
	}
	if len(ev.Metadata) > 0 {
		raw, err := json.Marshal(ev.Metadata)
		if err != nil {
			s.log.Warn("埋点 metadata 序列化失败", "event_type", ev.EventType, "error", err)
		} else {
			event.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.analytics.Record(ctx, event); err != nil {
		s.log.Error("记录埋点失败", "event_type", ev.EventType, "session_id", ev.SessionID, "error", err)
		return "", false
	}
	return event.ID, true
}

// MarkHelpful 评价“有帮助”投票 +1，返回最新票数
func (s *AnalyticsService) MarkHelpful(ctx context.Context, testimonialID uint) (int, error) {
	votes, err := s.testimonials.IncrementHelpful(ctx, testimonialID)
	if err != nil {
		ae := apperr.FromStore(err)
		if ae.Kind != apperr.KindNotFound {
			s.log.Error("评价投票失败", "testimonial_id", testimonialID, "error", err)
		}
		return 0, ae
	}
	return votes, nil
}
