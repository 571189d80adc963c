// Package ratelimit implements fixed-window cooldowns on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether an action identified by key may run now.
type Limiter interface {
	// Allow reports whether the action may proceed and, if so, starts a
	// cooldown of window for key.
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
	// Retry returns how long until key may be used again.
	Retry(ctx context.Context, key string) (time.Duration, error)
	Clear(ctx context.Context, key string) error
}

type redisLimiter struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisLimiter returns a Limiter backed by rdb. A nil client yields a
// Limiter that always allows.
func NewRedisLimiter(rdb *redis.Client) Limiter {
	return &redisLimiter{rdb: rdb, prefix: "rate_limit:"}
}

func (l *redisLimiter) key(k string) string {
	return l.prefix + k
}

func (l *redisLimiter) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	if l.rdb == nil || window <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, l.key(key), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func (l *redisLimiter) Retry(ctx context.Context, key string) (time.Duration, error) {
	if l.rdb == nil {
		return 0, nil
	}
	ttl, err := l.rdb.TTL(ctx, l.key(key)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (l *redisLimiter) Clear(ctx context.Context, key string) error {
	if l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, l.key(key)).Err()
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
