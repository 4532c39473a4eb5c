package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int

	// Prefix is prepended to every key, e.g. "mysterygraph:".
	Prefix string

	// DialTimeout bounds the initial connection check. Defaults to 5s.
	DialTimeout time.Duration
}

// RedisCache is a Cache backed by Redis, shared between API replicas.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis: address is required")
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Username:    opts.Username,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return newRedisCache(client, opts.Prefix), nil
}

func newRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get retrieves a value. Transient network errors are retried.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	hit := false
	err := RetryWithBackoff(ctx, func() error {
		v, err := c.client.Get(ctx, c.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return classify(err)
		}
		data, hit = v, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set stores a value. A non-positive ttl never expires.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Set(ctx, c.key(key), data, ttl).Err())
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Del(ctx, c.key(key)).Err())
	})
}

// Close closes the client connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// classify marks network failures as retryable and wraps every failure
// with ErrBackend.
func classify(err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%w: %w", ErrBackend, err)
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, redis.ErrPoolTimeout) {
		return Retryable(wrapped)
	}
	return wrapped
}

var _ Cache = (*RedisCache)(nil)
