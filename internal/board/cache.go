package board

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores rendered board pages. Misses and errors are equivalent to
// the board: it recomputes and moves on.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, prefix string)
}

const cacheKeyPrefix = "board:page:"

// RedisCache caches board pages in Redis with a short TTL. Invalidation is
// TTL-driven; a lifecycle change shows up on the board within pageTTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

const defaultPageTTL = 30 * time.Second

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: defaultPageTTL}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	_ = c.client.Set(ctx, cacheKeyPrefix+key, value, ttl).Err()
}

// Invalidate removes every cached page under the prefix. Used when an admin
// action must be visible immediately.
func (c *RedisCache) Invalidate(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return
	}
}
