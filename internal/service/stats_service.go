package service

import (
	"context"
	"sync"
	"time"

	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/logger"
	"github.com/user/giftgenius/internal/repository"
)

// StatsService 后台维护任务：重算成功率、清理过期埋点
type StatsService struct {
	repos         *repository.Repositories
	catalog       *CatalogService
	mode          catalog.AggregateMode
	interval      time.Duration
	retentionDays int
	log           *logger.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// StatsOptions 维护任务配置
type StatsOptions struct {
	Mode          catalog.AggregateMode
	Interval      time.Duration
	RetentionDays int
}

// NewStatsService 创建维护服务
func NewStatsService(repos *repository.Repositories, catalogSvc *CatalogService, opts StatsOptions, log *logger.Logger) *StatsService {
	return &StatsService{
		repos:         repos,
		catalog:       catalogSvc,
		mode:          opts.Mode,
		interval:      opts.Interval,
		retentionDays: opts.RetentionDays,
		log:           log.With("service", "StatsService"),
		stop:          make(chan struct{}),
	}
}

// Start 启动时先同步运行一次，之后按间隔定时运行
func (s *StatsService) Start(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop 停止定时任务并等待当前一轮结束
func (s *StatsService) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	s.wg.Wait()
}

// RunOnce 执行一轮维护
func (s *StatsService) RunOnce(ctx context.Context) {
	if s.mode != catalog.ModeOnRead {
		if err := s.RefreshSuccessRates(ctx); err != nil {
			s.log.Error("重算成功率失败", "error", err)
		}
	}

	if s.retentionDays > 0 {
		removed, err := s.repos.Analytics.DeleteOlderThan(ctx, s.retentionDays)
		if err != nil {
			s.log.Error("清理过期埋点失败", "error", err)
		} else if removed > 0 {
			s.log.Info("已清理过期埋点", "count", removed, "retention_days", s.retentionDays)
		}
	}
}

// RefreshSuccessRates 根据全部评价重算每个礼物的成功率并写回，然后清空查询缓存
func (s *StatsService) RefreshSuccessRates(ctx context.Context) error {
	started := time.Now()
	ratings, err := s.repos.Testimonial.ListRatings(ctx)
	if err != nil {
		return err
	}
	stats := catalog.AggregateByGift(ratings)
	if err := s.repos.Gift.UpdateSuccessStats(ctx, stats); err != nil {
		return err
	}
	if s.catalog != nil {
		s.catalog.InvalidateCache(ctx)
	}
	s.log.Info("成功率重算完成", "gifts_with_reviews", len(stats), "testimonials", len(ratings), "elapsed", time.Since(started))
	return nil
}
