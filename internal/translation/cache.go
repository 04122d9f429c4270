package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DalintonC/lomigg-news/internal/model"
)

const cacheKeyPrefix = "translation:"

// RedisCache keeps finished translations by article identity, so an item that
// never reached the store is not translated twice.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Key(id string) string {
	return cacheKeyPrefix + id
}

// Get returns nil without error on a miss.
func (c *RedisCache) Get(ctx context.Context, id string) (*model.Translation, error) {
	raw, err := c.client.Get(ctx, c.Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.Key(id), err)
	}

	var t model.Translation
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Key(id), err)
	}

	return &t, nil
}

func (c *RedisCache) Set(ctx context.Context, id string, t model.Translation) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Key(id), err)
	}

	if err := c.client.Set(ctx, c.Key(id), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", c.Key(id), err)
	}

	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
