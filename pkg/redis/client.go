package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by BRPop when the wait timed out with nothing to pop.
var ErrEmpty = errors.New("redis: list is empty")

type Client struct {
	client *redis.Client
}

// New creates a new Redis client
func New(addr, password string, db int) *Client {
	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     10,
			MinIdleConns: 2,
		}),
	}
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// LPush prepends data to the list at key
func (c *Client) LPush(ctx context.Context, key string, data []byte) error {
	return c.client.LPush(ctx, key, data).Err()
}

// BRPop blocks up to timeout for the tail element of the list at key
func (c *Client) BRPop(ctx context.Context, timeout time.Duration, key string) ([]byte, error) {
	res, err := c.client.BRPop(ctx, timeout, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	// res is [key, value]
	return []byte(res[1]), nil
}

// Close closes the Redis connection
func (c *Client) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}
