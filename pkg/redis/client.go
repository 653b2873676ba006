package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"stocklens/pkg/config"
)

// The cache sits in front of live market-data providers. A slow cache
// is worse than no cache there, so dial and command timeouts stay
// short and a miss falls through to the provider chain.
const (
	dialTimeout    = 2 * time.Second
	commandTimeout = 500 * time.Millisecond
	connectTimeout = 5 * time.Second
)

// Client wraps the go-redis client behind the bar cache. When Redis is
// disabled in config the client is a no-op and every cache call is a
// miss, so the pipeline runs identically without a Redis instance.
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New creates a Redis client per config and verifies connectivity.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb, enabled: true}, nil
}

// Ping checks connectivity. Disabled clients always report healthy.
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether a real Redis backend is connected.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis exposes the underlying client to the cache layer.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
