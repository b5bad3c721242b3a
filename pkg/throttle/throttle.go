// Package throttle limits how often an action may repeat for the same key.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis allows one action per key per window using SET NX EX.
type Redis struct {
	client *redis.Client
	prefix string
	window time.Duration
	log    *zap.Logger
}

func NewRedis(client *redis.Client, prefix string, window time.Duration, log *zap.Logger) *Redis {
	return &Redis{client: client, prefix: prefix, window: window, log: log}
}

// Allow fails open: a Redis error is logged and the action is permitted.
func (r *Redis) Allow(ctx context.Context, key string) bool {
	ok, err := r.client.SetNX(ctx, r.prefix+key, 1, r.window).Result()
	if err != nil {
		r.log.Warn("throttle unavailable, allowing", zap.String("key", key), zap.Error(err))
		return true
	}
	return ok
}

// Release deletes the key so the next Allow succeeds.
func (r *Redis) Release(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.Warn("throttle release failed", zap.String("key", key), zap.Error(err))
	}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
