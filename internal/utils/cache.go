package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache 全局缓存实例（分类统计等低频变化数据）
var Cache *cache.Cache

// InitCache 初始化缓存
func InitCache(defaultTTL time.Duration) {
	Cache = cache.New(defaultTTL, 2*defaultTTL)
}

// CacheGet 获取缓存值
func CacheGet(key string) (interface{}, bool) {
	if Cache == nil {
		return nil, false
	}
	return Cache.Get(key)
}

// CacheSet 设置缓存值，duration 为 0 时使用默认过期时间
func CacheSet(key string, value interface{}, duration time.Duration) {
	if Cache == nil {
		return
	}
	if duration == 0 {
		duration = cache.DefaultExpiration
	}
	Cache.Set(key, value, duration)
}

// CacheClear 清空所有缓存
func CacheClear() {
	if Cache != nil {
		Cache.Flush()
	}
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// SearchCache 查询结果缓存：LRU 淘汰 + TTL 过期
type SearchCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
}

// NewSearchCache size 是最大缓存条数，ttl 为 0 表示不过期
func NewSearchCache[T any](size int, ttl time.Duration) *SearchCache[T] {
	// lru.Cache 是线程安全的
	c, _ := lru.New[string, CacheItem[T]](size)
	return &SearchCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set 写入或覆盖
func (c *SearchCache[T]) Set(key string, value T) {
	item := CacheItem[T]{Value: value}
	if c.ttl > 0 {
		item.ExpiredAt = time.Now().Add(c.ttl)
	}
	c.storage.Add(key, item)
}

// Get 读取，过期的条目会被顺带删除
func (c *SearchCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if !item.ExpiredAt.IsZero() && time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.Value, true
}

// Clear 清空
func (c *SearchCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数
func (c *SearchCache[T]) Len() int {
	return c.storage.Len()
}
