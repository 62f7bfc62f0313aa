package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisPrefix namespaces cache keys in a shared Redis.
const DefaultRedisPrefix = "copilot-metrics:"

// RedisCache is a Store backed by Redis. Entries are stored as JSON and
// expire through the Redis TTL derived from ValidUntil.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
	counters
}

// NewRedisCache wraps client. An empty prefix uses DefaultRedisPrefix.
func NewRedisCache(client *redis.Client, prefix string, logger *zap.Logger) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, prefix: prefix, logger: logger}
}

// Get loads and decodes the entry under key.
func (r *RedisCache) Get(ctx context.Context, key string) (Entry, bool) {
	e, ok := r.Peek(ctx, key)
	r.lookup(ok && e.Valid(time.Now()))
	return e, ok
}

// Peek loads the entry under key without counting the lookup.
func (r *RedisCache) Peek(ctx context.Context, key string) (Entry, bool) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Redis cache get failed", zap.Error(err))
		}
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		r.logger.Warn("Discarding undecodable cache entry", zap.Error(err))
		return Entry{}, false
	}
	return e, true
}

// Put stores entry until its ValidUntil. Already expired entries are skipped.
func (r *RedisCache) Put(ctx context.Context, key string, entry Entry) {
	ttl := time.Until(entry.ValidUntil)
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		r.logger.Error("Failed to encode cache entry", zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, ttl).Err(); err != nil {
		r.logger.Warn("Redis cache set failed", zap.Error(err))
		return
	}
	r.puts.Add(1)
}

// Invalidate deletes the entry under key.
func (r *RedisCache) Invalidate(ctx context.Context, key string) {
	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		r.logger.Warn("Redis cache delete failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.invalidations.Add(1)
	}
}

// Stats returns the current counters. Entries counts keys under the prefix.
func (r *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var (
		cursor  uint64
		entries int64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 1000).Result()
		if err != nil {
			r.logger.Warn("Redis cache scan failed", zap.Error(err))
			break
		}
		entries += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return r.snapshot("redis", entries)
}
