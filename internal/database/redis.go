package database

import (
	"context"
	"fmt"

	"github.com/parfumelite/ads-warehouse/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisDB holds the client behind the report response cache. The whole
// wrapper is optional: when Redis is disabled or unreachable the server
// runs without it and reports query the store directly.
type RedisDB struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedisDB connects the report cache client, verifying with a ping.
func NewRedisDB(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*RedisDB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("database: connect redis: %w", err)
	}

	logger.Info("report cache connected",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	return &RedisDB{Client: client, logger: logger}, nil
}

// Close closes the cache connection.
func (r *RedisDB) Close() error {
	if r.Client != nil {
		r.logger.Info("report cache connection closed")
		return r.Client.Close()
	}
	return nil
}

// Health reports whether the cache is reachable.
func (r *RedisDB) Health(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}
