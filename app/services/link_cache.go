package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/snipper-app/snipper/config"
	"github.com/snipper-app/snipper/models"
)

// LinkCache is an external read-through cache sitting in front of short link
// lookups. Cache misses and cache errors are indistinguishable to callers; the
// resolver always falls back to the repository.
type LinkCache interface {
	Get(ctx context.Context, code string) (*models.ShortLink, bool)
	Set(ctx context.Context, link *models.ShortLink)
	Invalidate(ctx context.Context, code string) error
}

type RedisLinkCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLinkCache(client *redis.Client, cfg *config.CacheConfig) LinkCache {
	if client == nil {
		return NewNoopLinkCache()
	}
	return &RedisLinkCache{
		client: client,
		prefix: cfg.RedisPrefix,
		ttl:    cfg.LinkTTL,
	}
}

func (c *RedisLinkCache) key(code string) string {
	return fmt.Sprintf("%slink:%s", c.prefix, code)
}

func (c *RedisLinkCache) Get(ctx context.Context, code string) (*models.ShortLink, bool) {
	data, err := c.client.Get(ctx, c.key(code)).Bytes()
	if err != nil {
		return nil, false
	}
	var link models.ShortLink
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, false
	}
	return &link, true
}

func (c *RedisLinkCache) Set(ctx context.Context, link *models.ShortLink) {
	data, err := json.Marshal(link)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(link.Code), data, c.ttl).Err()
}

func (c *RedisLinkCache) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}

// NoopLinkCache is used when caching is disabled
type NoopLinkCache struct{}

func NewNoopLinkCache() LinkCache {
	return &NoopLinkCache{}
}

func (c *NoopLinkCache) Get(ctx context.Context, code string) (*models.ShortLink, bool) {
	return nil, false
}

func (c *NoopLinkCache) Set(ctx context.Context, link *models.ShortLink) {}

func (c *NoopLinkCache) Invalidate(ctx context.Context, code string) error { return nil }
