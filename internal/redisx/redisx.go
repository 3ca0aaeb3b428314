// Package redisx is a thin Redis wrapper for the HTTP-boundary caches
// (comp-search results and photo bytes).
package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct{ Rdb *redis.Client }

func New(addr, password string, db int) *Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &Client{Rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.Rdb.Ping(ctx).Err()
}

func (c *Client) Close() error { return c.Rdb.Close() }

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Rdb.Get(ctx, key).Result()
}

func (c *Client) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return c.Rdb.Set(ctx, key, val, ttl).Err()
}

func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	return c.Rdb.Get(ctx, key).Bytes()
}

func (c *Client) SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.Rdb.Set(ctx, key, val, ttl).Err()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.Rdb.Exists(ctx, key).Result()
	return n == 1, err
}
