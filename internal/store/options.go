package store

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// StoreOption is a functional option for configuring a store.
type StoreOption func(*storeConfig)

// storeConfig holds configuration for stores.
type storeConfig struct {
	redisClient *redis.Client
	redisTTL    time.Duration
	duckdbPath  string
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the expiry applied to Redis keys. Zero means no expiry.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// WithDuckDBPath sets the database file for the DuckDB store.
func WithDuckDBPath(path string) StoreOption {
	return func(c *storeConfig) {
		c.duckdbPath = path
	}
}
