package clock

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
)

// RedisClock keeps the height in a single Redis key so that every API instance stamps
// registrations with the same block height. A missing key reads as height zero.
type RedisClock struct {
	client redis.Cmdable
	key    string
}

// NewRedisClock creates a RedisClock stored under key.
func NewRedisClock(client redis.Cmdable, key string) *RedisClock {
	return &RedisClock{
		client: client,
		key:    key,
	}
}

// Now returns the current height.
func (c *RedisClock) Now(ctx context.Context) (claimsDomain.LogicalTime, error) {
	height, err := c.client.Get(ctx, c.key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read block height: %w", err)
	}
	return claimsDomain.LogicalTime(height), nil
}

// Advance atomically increments the height with INCR.
func (c *RedisClock) Advance(ctx context.Context) (claimsDomain.LogicalTime, error) {
	height, err := c.client.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance block height: %w", err)
	}
	return claimsDomain.LogicalTime(height), nil
}

// NewRedisClient parses url, connects and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
