package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// JSONCache stores JSON-encoded read models.
type JSONCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type RedisJSONCache struct {
	client *redis.Client
	prefix string
}

func NewRedisJSONCache(client *redis.Client, prefix string) *RedisJSONCache {
	return &RedisJSONCache{client: client, prefix: prefix}
}

func (c *RedisJSONCache) key(k string) string {
	return fmt.Sprintf("%s%s", c.prefix, k)
}

// Get reports false on a miss.
func (c *RedisJSONCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		// Stale shape after a deploy; treat as a miss.
		c.client.Del(ctx, c.key(key))
		return false, nil
	}
	return true, nil
}

func (c *RedisJSONCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *RedisJSONCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.client.Del(ctx, full...).Err()
}
