package service

import (
	"context"
	"net/url"
	"time"

	"github.com/user/giftgenius/internal/apperr"
	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/logger"
	"github.com/user/giftgenius/internal/model"
	"github.com/user/giftgenius/internal/repository"
	"github.com/user/giftgenius/internal/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// SimilarGiftsLimit 详情页相似礼物数量
	SimilarGiftsLimit = 4
	// CategoriesCacheTTL 分类统计缓存时间
	CategoriesCacheTTL = 5 * time.Minute
	// DefaultQueryTimeout 合并查询的默认超时
	DefaultQueryTimeout = 5 * time.Second

	categoriesCacheKey = "catalog:categories"
)

// CatalogOptions 目录服务配置
type CatalogOptions struct {
	Categories   []string
	DefaultLimit int
	Strict       bool
	// QueryTimeout 合并后的共享查询的超时，与发起请求的客户端无关
	QueryTimeout time.Duration
}

// CatalogService 礼物目录查询服务
type CatalogService struct {
	gifts        repository.GiftStore
	testimonials repository.TestimonialStore
	cache        ResultCache
	opts         catalog.Options
	strict       bool
	queryTimeout time.Duration
	sf           singleflight.Group
	log          *logger.Logger
}

// NewCatalogService 创建目录服务，cache 为 nil 时不缓存
func NewCatalogService(repos *repository.Repositories, cache ResultCache, opts CatalogOptions, log *logger.Logger) *CatalogService {
	return &CatalogService{
		gifts:        repos.Gift,
		testimonials: repos.Testimonial,
		cache:        cache,
		opts: catalog.Options{
			Categories:   catalog.NewCategorySet(opts.Categories),
			DefaultLimit: opts.DefaultLimit,
		},
		strict:       opts.Strict,
		queryTimeout: opts.QueryTimeout,
		log:          log.With("service", "CatalogService"),
	}
}

// Categories 分类白名单
func (s *CatalogService) Categories() []string {
	return s.opts.Categories.List()
}

// ParseQuery 解析查询参数。严格模式下任何被丢弃的参数都会导致 400。
func (s *CatalogService) ParseQuery(values url.Values) (catalog.Query, error) {
	q, problems := catalog.ParseQuery(values, s.opts)
	if len(problems) == 0 {
		return q, nil
	}
	if s.strict {
		return q, apperr.Validation("VALIDATION_ERROR", "invalid query parameters", problems)
	}
	s.log.Debug("忽略无效查询参数", "problems", problems)
	return q, nil
}

// ListGifts 执行列表查询。相同条件的并发请求只访问一次存储。
// 共享查询不继承首个请求的取消信号，每个请求只在自己的 ctx 结束时提前返回。
func (s *CatalogService) ListGifts(ctx context.Context, q catalog.Query) (catalog.Result, error) {
	key := q.Key()
	if s.cache != nil {
		if res, ok := s.cache.Get(ctx, key); ok {
			return res, nil
		}
	}

	ch := s.sf.DoChan(key, func() (interface{}, error) {
		timeout := s.queryTimeout
		if timeout <= 0 {
			timeout = DefaultQueryTimeout
		}
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		res, err := catalog.Execute(qctx, s.gifts, q)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(qctx, key, res)
		}
		return res, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return catalog.Result{}, s.storeError("查询礼物失败", r.Err)
		}
		return r.Val.(catalog.Result), nil
	case <-ctx.Done():
		return catalog.Result{}, s.storeError("查询礼物超时", ctx.Err())
	}
}

// GiftDetail 礼物详情
type GiftDetail struct {
	Gift         *model.Gift         `json:"gift"`
	Testimonials []model.Testimonial `json:"testimonials"`
	SimilarGifts []model.Gift        `json:"similarGifts"`
}

// GetGift 获取礼物详情、评价和同类推荐
func (s *CatalogService) GetGift(ctx context.Context, id uint) (*GiftDetail, error) {
	gift, err := s.gifts.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError("查询礼物详情失败", err)
	}
	if gift == nil {
		return nil, apperr.NotFound("GIFT_NOT_FOUND", "gift not found")
	}

	detail := &GiftDetail{Gift: gift}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.testimonials.ListByGift(gctx, id)
		detail.Testimonials = list
		return err
	})
	g.Go(func() error {
		list, err := s.gifts.FindSimilar(gctx, gift, SimilarGiftsLimit)
		detail.SimilarGifts = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.storeError("查询礼物评价失败", err)
	}
	if detail.Testimonials == nil {
		detail.Testimonials = []model.Testimonial{}
	}
	if detail.SimilarGifts == nil {
		detail.SimilarGifts = []model.Gift{}
	}
	return detail, nil
}

// CategoryStats 分类统计，缓存 5 分钟
func (s *CatalogService) CategoryStats(ctx context.Context) ([]model.CategoryStats, error) {
	if v, ok := utils.CacheGet(categoriesCacheKey); ok {
		return v.([]model.CategoryStats), nil
	}
	stats, err := s.gifts.CategoryStats(ctx)
	if err != nil {
		return nil, s.storeError("查询分类统计失败", err)
	}
	if stats == nil {
		stats = []model.CategoryStats{}
	}
	utils.CacheSet(categoriesCacheKey, stats, CategoriesCacheTTL)
	return stats, nil
}

// InvalidateCache 清空查询缓存，在成功率重算后调用
func (s *CatalogService) InvalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Clear(ctx)
	}
	utils.CacheClear()
}

func (s *CatalogService) storeError(msg string, err error) error {
	ae := apperr.FromStore(err)
	switch ae.Kind {
	case apperr.KindNotFound, apperr.KindValidation:
	case apperr.KindTimeout:
		s.log.Warn(msg, "error", err)
	default:
		s.log.Error(msg, "error", err, "retry", ae.Retry)
	}
	return ae
}
