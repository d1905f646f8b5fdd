package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gema-progress-api/internal/progress"
)

type redisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisViewCache stores view confirmations in one hash per user. HSET only
// adds fields, so concurrent writers never lose a confirmation.
func NewRedisViewCache(client *redis.Client, ttl time.Duration) progress.ViewCache {
	return &redisViewCache{client: client, ttl: ttl}
}

func viewCacheKey(userID uint) string {
	return fmt.Sprintf("progress:views:%d", userID)
}

func (c *redisViewCache) Get(ctx context.Context, userID uint) (map[string]bool, error) {
	values, err := c.client.HGetAll(ctx, viewCacheKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	views := make(map[string]bool, len(values))
	for key, value := range values {
		if value == "1" {
			views[key] = true
		}
	}
	return views, nil
}

func (c *redisViewCache) Set(ctx context.Context, userID uint, views map[string]bool) error {
	fields := make(map[string]interface{}, len(views))
	for key, seen := range views {
		if seen {
			fields[key] = "1"
		}
	}
	if len(fields) == 0 {
		return nil
	}

	key := viewCacheKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	return err
}
