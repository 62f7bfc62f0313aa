package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sofatutor/copilot-metrics-gateway/internal/copilot"
	"go.uber.org/zap"
)

// Entry is a cached upstream payload with its validity deadline.
type Entry struct {
	Data       []copilot.MetricsDay `json:"data"`
	ValidUntil time.Time            `json:"valid_until"`
}

// Valid reports whether the entry may still be served at now.
func (e Entry) Valid(now time.Time) bool {
	return e.ValidUntil.After(now)
}

// Store is a response cache backend. Implementations must be safe for
// concurrent use. Get returns entries regardless of validity; callers check
// Valid and Invalidate stale entries themselves.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	// Peek is Get without touching the hit and miss counters.
	Peek(ctx context.Context, key string) (Entry, bool)
	Put(ctx context.Context, key string, entry Entry)
	Invalidate(ctx context.Context, key string)
	Stats() Stats
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Backend       string `json:"backend"`
	Hits          int64  `json:"hits"`
	Misses        int64  `json:"misses"`
	Puts          int64  `json:"puts"`
	Invalidations int64  `json:"invalidations"`
	Entries       int64  `json:"entries"`
}

type counters struct {
	hits          atomic.Int64
	misses        atomic.Int64
	puts          atomic.Int64
	invalidations atomic.Int64
}

func (c *counters) lookup(found bool) {
	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
}

func (c *counters) snapshot(backend string, entries int64) Stats {
	return Stats{
		Backend:       backend,
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Puts:          c.puts.Load(),
		Invalidations: c.invalidations.Load(),
		Entries:       entries,
	}
}

// New returns the Store for backend ("memory" or "redis"). The Redis client
// is only required for the redis backend.
func New(backend string, client *redis.Client, prefix string, logger *zap.Logger) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryCache(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis cache backend requires a client")
		}
		return NewRedisCache(client, prefix, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
