package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "jansankalp:"

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return wrap(c.client.Set(ctx, keyPrefix+key, value, ttl).Err())
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, keyPrefix+key)
	}
	return wrap(c.client.Del(ctx, prefixed...).Err())
}

// IncrWithTTL increments key and starts its expiry on the first hit only,
// so a window never slides forward.
func (c *RedisCache) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	redisKey := keyPrefix + key
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		if ttl > 0 {
			p.ExpireNX(ctx, redisKey, ttl)
		}
		return nil
	})
	if err != nil {
		return 0, wrap(err)
	}
	return incr.Val(), nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
}

var _ ports.Cache = (*RedisCache)(nil)
