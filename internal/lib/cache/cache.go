// Package cache provides a small JSON cache for listing reads.
//
// It is backed by Redis when an address is configured. Without one, Noop
// is used and every lookup misses.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON-encodable values by key.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache on a shared go-redis client.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client. A zero ttl stores entries without expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get decodes the cached value into dest. Numbers decode as json.Number so
// integers survive the round trip.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dest)
}

// Set encodes value and stores it with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Delete removes key. Deleting an absent key is not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Noop is the cache used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error { return ErrMiss }
func (Noop) Set(context.Context, string, any) error { return nil }
func (Noop) Delete(context.Context, string) error   { return nil }
