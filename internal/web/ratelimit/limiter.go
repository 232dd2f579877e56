// Package ratelimit limits API requests per client key.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a request for key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (*Decision, error)
	Close() error
}

// Decision is the limiter state after one request
type Decision struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

// Config selects and sizes a limiter. Requests <= 0 disables limiting.
type Config struct {
	Requests int
	Window   time.Duration
	Backend  string // "memory" or "redis"
}

// New builds the limiter described by cfg. client is only used by the redis
// backend. It returns (nil, nil) when limiting is disabled.
func New(cfg Config, client *redis.Client, prefix string) (Limiter, error) {
	if cfg.Requests <= 0 {
		return nil, nil
	}

	var (
		limiter Limiter
		err     error
	)
	switch cfg.Backend {
	case "", "memory":
		limiter, err = NewTokenBucket(TokenBucketConfig{
			Capacity:        cfg.Requests,
			RefillRate:      cfg.Window,
			CleanupInterval: 5 * time.Minute,
		})
	case "redis":
		limiter, err = NewRedisLimiter(RedisLimiterConfig{
			Client: client,
			Limit:  cfg.Requests,
			Window: cfg.Window,
			Prefix: prefix,
		})
	default:
		return nil, fmt.Errorf("unsupported rate limit backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return limiter, nil
}
