package ports

import (
	"context"
	"time"
)

// Cache is the keyed TTL store shared by every process.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Locker serializes work on one key across workers and processes.
type Locker interface {
	// Acquire returns domain.ErrLockNotAcquired when the key stays held
	// until ctx ends.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
