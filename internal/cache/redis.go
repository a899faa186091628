// Package cache provides Redis access for request throttling.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the Redis connection backing login throttling counters.
// The readiness probe pings through it as well.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection before returning.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity for the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the underlying Redis client, mainly so tests can
// flush throttling state. Prefer adding methods to Cache otherwise.
func (c *Cache) Client() *redis.Client {
	return c.client
}
