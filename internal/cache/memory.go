package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Store. Entries live until invalidated or
// replaced; the key space is small and entries are short lived.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]Entry
	now   func() time.Time
	counters
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[string]Entry), now: time.Now}
}

// Get returns the entry under key. Only entries still valid count as hits.
func (c *MemoryCache) Get(ctx context.Context, key string) (Entry, bool) {
	e, ok := c.Peek(ctx, key)
	c.lookup(ok && e.Valid(c.now()))
	return e, ok
}

// Peek returns the entry under key without counting the lookup.
func (c *MemoryCache) Peek(_ context.Context, key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[key]
	return e, ok
}

// Put stores entry under key, replacing any previous entry.
func (c *MemoryCache) Put(_ context.Context, key string, entry Entry) {
	c.mu.Lock()
	c.store[key] = entry
	c.mu.Unlock()
	c.puts.Add(1)
}

// Invalidate removes the entry under key, if any.
func (c *MemoryCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	_, ok := c.store[key]
	delete(c.store, key)
	c.mu.Unlock()
	if ok {
		c.invalidations.Add(1)
	}
}

// Len returns the number of stored entries, valid or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stats returns the current counters.
func (c *MemoryCache) Stats() Stats {
	return c.snapshot("memory", int64(c.Len()))
}
