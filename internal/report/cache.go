package report

import (
	"context"
	"encoding/json"
	"time"

	"github.com/parfumelite/ads-warehouse/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is an optional Redis-backed response cache for report queries.
// A nil *Cache (or one built over a nil client) disables caching; cache
// errors degrade to a direct query and are never surfaced to callers.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCache creates a report cache. client may be nil.
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger, metrics: m}
}

// get loads a cached response into v. It returns false on a miss, a
// disabled cache, or any Redis/JSON failure.
func (c *Cache) get(ctx context.Context, report, key string, v any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.metrics.RecordCache(report, false)
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.logger.Debug("report cache entry unreadable", zap.String("key", key), zap.Error(err))
		c.metrics.RecordCache(report, false)
		return false
	}
	c.metrics.RecordCache(report, true)
	return true
}

// set stores a response best-effort.
func (c *Cache) set(ctx context.Context, key string, v any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
