package cache

import (
	"context"
	"errors"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-instance SET NX lock. Holders that outlive ttl
// lose the lock silently, so ttl must exceed the longest critical section.
type RedisLocker struct {
	client    *redis.Client
	pollEvery time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, pollEvery: 50 * time.Millisecond}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	redisKey := keyPrefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollEvery)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, domain.ErrLockNotAcquired
			}
			return nil, wrap(err)
		}
		if ok {
			return func(releaseCtx context.Context) error {
				return wrap(releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err())
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, domain.ErrLockNotAcquired
		case <-ticker.C:
		}
	}
}

var _ ports.Locker = (*RedisLocker)(nil)
