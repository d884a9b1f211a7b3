package service

import (
	"context"
	"time"

	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/logger"
	"github.com/user/giftgenius/internal/utils"
)

// ResultCache 列表查询结果缓存
type ResultCache interface {
	Get(ctx context.Context, key string) (catalog.Result, bool)
	Set(ctx context.Context, key string, res catalog.Result)
	Clear(ctx context.Context)
}

// localResultCache 进程内 LRU 缓存
type localResultCache struct {
	c *utils.SearchCache[catalog.Result]
}

// NewLocalResultCache 创建进程内结果缓存
func NewLocalResultCache(size int, ttl time.Duration) ResultCache {
	return &localResultCache{c: utils.NewSearchCache[catalog.Result](size, ttl)}
}

func (l *localResultCache) Get(_ context.Context, key string) (catalog.Result, bool) {
	return l.c.Get(key)
}

func (l *localResultCache) Set(_ context.Context, key string, res catalog.Result) {
	l.c.Set(key, res)
}

func (l *localResultCache) Clear(context.Context) {
	l.c.Clear()
}

// redisResultCache 多实例共享缓存。Redis 故障只记录日志，查询直接回源。
type redisResultCache struct {
	rc  *utils.RedisCache
	log *logger.Logger
}

// NewRedisResultCache 基于 Redis 的结果缓存
func NewRedisResultCache(rc *utils.RedisCache, log *logger.Logger) ResultCache {
	return &redisResultCache{rc: rc, log: log.With("component", "RedisResultCache")}
}

func (r *redisResultCache) Get(ctx context.Context, key string) (catalog.Result, bool) {
	var res catalog.Result
	ok, err := r.rc.GetJSON(ctx, key, &res)
	if err != nil {
		r.log.Warn("读取缓存失败", "key", key, "error", err)
		return res, false
	}
	return res, ok
}

func (r *redisResultCache) Set(ctx context.Context, key string, res catalog.Result) {
	if err := r.rc.SetJSON(ctx, key, res); err != nil {
		r.log.Warn("写入缓存失败", "key", key, "error", err)
	}
}

func (r *redisResultCache) Clear(ctx context.Context) {
	if err := r.rc.Clear(ctx); err != nil {
		r.log.Warn("清空缓存失败", "error", err)
	}
}
