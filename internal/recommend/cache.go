package recommend

import (
	"sync"
	"time"
)

// cacheEntry is an immutable cached recommendation list with its expiry.
type cacheEntry struct {
	ids       []int64
	expiresAt time.Time
}

// Cache is an in-process recommendation cache keyed by user id with lazy
// TTL expiry on read. Entries are replaced wholesale; concurrent requests
// for the same user race benignly (last write wins). The cache is an
// optimization only and is lost on restart.
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]cacheEntry
	now     func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates an empty recommendation cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[int64]cacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the first limit cached song ids for a user. It misses when no
// entry exists, the entry has expired (expired entries are deleted), or the
// entry holds fewer than limit ids.
func (c *Cache) Get(userID int64, limit int) ([]int64, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check: another request may have replaced the entry.
		if current, ok := c.entries[userID]; ok && c.now().After(current.expiresAt) {
			delete(c.entries, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	if len(entry.ids) < limit {
		return nil, false
	}

	ids := make([]int64, limit)
	copy(ids, entry.ids[:limit])
	return ids, true
}

// Put stores a recommendation list for a user, overwriting any previous
// entry.
func (c *Cache) Put(userID int64, ids []int64, ttl time.Duration) {
	stored := make([]int64, len(ids))
	copy(stored, ids)

	c.mu.Lock()
	c.entries[userID] = cacheEntry{
		ids:       stored,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}
