package refdata

import (
	"context"
	"sync"
	"time"
)

// Entry is a cached value and the time it was fetched.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// Cache memoizes one fetch for a bounded window. Staleness past the window
// is handled by refetching on the next Get; there is no invalidation signal.
// Failed fetches are not cached.
type Cache[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	fetch func(context.Context) (T, error)
	entry *Entry[T]
	now   func() time.Time
}

// NewCache creates a cache around fetch with the given time-to-live.
func NewCache[T any](ttl time.Duration, fetch func(context.Context) (T, error)) *Cache[T] {
	return &Cache[T]{ttl: ttl, fetch: fetch, now: time.Now}
}

// Expired reports whether the cached entry is missing or older than the TTL
// at the given instant.
func (c *Cache[T]) Expired(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiredLocked(now)
}

func (c *Cache[T]) expiredLocked(now time.Time) bool {
	return c.entry == nil || now.Sub(c.entry.FetchedAt) >= c.ttl
}

// Get returns the cached value while fresh, otherwise refetches.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	if !c.expiredLocked(c.now()) {
		v := c.entry.Value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh fetches unconditionally and replaces the entry on success.
func (c *Cache[T]) Refresh(ctx context.Context) (T, error) {
	v, err := c.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entry = &Entry[T]{Value: v, FetchedAt: c.now()}
	c.mu.Unlock()
	return v, nil
}

// Peek returns the current entry without fetching.
func (c *Cache[T]) Peek() (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return Entry[T]{}, false
	}
	return *c.entry, true
}
