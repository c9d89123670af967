package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// Cache is a process-local stand-in for the Redis cache.
type Cache struct {
	mu    sync.Mutex
	rows  map[string]cacheEntry
	nowFn func() time.Time
}

func NewCache() *Cache {
	return &Cache{rows: map[string]cacheEntry{}, nowFn: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.live(key)
	if !ok {
		return "", domain.ErrNotFound
	}
	return entry.value, nil
}

func (c *Cache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[key] = cacheEntry{value: value, expiresAt: c.expiry(ttl)}
	return nil
}

func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.rows, key)
	}
	return nil
}

func (c *Cache) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.live(key)
	if !ok {
		entry = cacheEntry{value: "0", expiresAt: c.expiry(ttl)}
	}
	n, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, err
	}
	n++
	entry.value = strconv.FormatInt(n, 10)
	c.rows[key] = entry
	return n, nil
}

func (c *Cache) live(key string) (cacheEntry, bool) {
	entry, ok := c.rows[key]
	if !ok {
		return cacheEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(c.nowFn()) {
		delete(c.rows, key)
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Cache) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.nowFn().Add(ttl)
}

// Locker hands out per-key locks inside one process.
type Locker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewLocker() *Locker {
	return &Locker{held: map[string]chan struct{}{}}
}

func (l *Locker) Acquire(ctx context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	for {
		l.mu.Lock()
		waitCh, busy := l.held[key]
		if !busy {
			done := make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			var once sync.Once
			return func(context.Context) error {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(done)
				})
				return nil
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, domain.ErrLockNotAcquired
		case <-waitCh:
		}
	}
}
