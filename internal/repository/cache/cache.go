// Package cache is a fail-soft key-value cache over db.KVStore.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/db"
)

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
}

// Cache never surfaces store errors: a failed read is a miss and a failed
// write reports false. A nil store disables caching.
type Cache struct {
	store      store
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a cache. cacheTotal has labels "namespace" and "result"
// ("hit"/"miss"), may be nil.
func New(s store, prefix string, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{
		store:      s,
		prefix:     prefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the raw value stored at key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.store == nil {
		return nil, false
	}
	data, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.inc(key, "miss")
		return nil, false
	}
	c.inc(key, "hit")
	return data, true
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if c.store == nil {
		return false
	}
	if err := c.store.SetWithTTL(ctx, c.prefix+key, value, ttl); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// GetJSON decodes the value at key into dst. Undecodable entries count as misses.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("Failed to decode cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON encodes value and stores it under key for ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode cache value", zap.String("key", key), zap.Error(err))
		return false
	}
	return c.Set(ctx, key, data, ttl)
}

// Exists reports whether key is present.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	if c.store == nil {
		return false
	}
	ok, err := c.store.Exists(ctx, c.prefix+key)
	if err != nil {
		c.logger.Warn("Cache exists check failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if c.store == nil {
		return false
	}
	if err := c.store.Del(ctx, c.prefix+key); err != nil {
		c.logger.Warn("Cache delete failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) inc(key, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(namespace(key), result).Inc()
	}
}

// namespace is the first key segment ("text", "video", "pdf").
func namespace(key string) string {
	for i := range len(key) {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
