package ratelimit

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// TokenBucket is an in-memory limiter; each key refills Capacity tokens per
// RefillRate.
type TokenBucket struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	capacity   int
	refillRate time.Duration
	cleanup    *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
	now        func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// TokenBucketConfig holds configuration for the token bucket limiter
type TokenBucketConfig struct {
	Capacity        int
	RefillRate      time.Duration
	CleanupInterval time.Duration // 0 disables idle bucket cleanup
}

// NewTokenBucket creates a token bucket limiter
func NewTokenBucket(config TokenBucketConfig) (*TokenBucket, error) {
	if config.Capacity <= 0 {
		return nil, errors.New("capacity must be greater than 0")
	}
	if config.RefillRate <= 0 {
		return nil, errors.New("refill rate must be greater than 0")
	}

	tb := &TokenBucket{
		buckets:    make(map[string]*bucket),
		capacity:   config.Capacity,
		refillRate: config.RefillRate,
		done:       make(chan struct{}),
		now:        time.Now,
	}

	if config.CleanupInterval > 0 {
		tb.cleanup = time.NewTicker(config.CleanupInterval)
		go tb.cleanupLoop()
	}

	return tb, nil
}

// Allow consumes one token for key if one is available
func (tb *TokenBucket) Allow(ctx context.Context, key string) (*Decision, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(tb.capacity), lastSeen: now}
		tb.buckets[key] = b
	} else if elapsed := now.Sub(b.lastSeen); elapsed > 0 {
		refill := float64(tb.capacity) * float64(elapsed) / float64(tb.refillRate)
		b.tokens = math.Min(float64(tb.capacity), b.tokens+refill)
		b.lastSeen = now
	}

	allowed := b.tokens >= 1
	if allowed {
		b.tokens--
	}

	return &Decision{
		Limit:     tb.capacity,
		Remaining: int(b.tokens),
		ResetAt:   now.Add(tb.untilFull(b.tokens)),
		Allowed:   allowed,
	}, nil
}

func (tb *TokenBucket) untilFull(tokens float64) time.Duration {
	missing := float64(tb.capacity) - tokens
	return time.Duration(missing / float64(tb.capacity) * float64(tb.refillRate))
}

func (tb *TokenBucket) cleanupLoop() {
	for {
		select {
		case <-tb.cleanup.C:
			tb.cleanupIdle()
		case <-tb.done:
			return
		}
	}
}

// cleanupIdle drops buckets that have been full for a whole refill period
func (tb *TokenBucket) cleanupIdle() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	for key, b := range tb.buckets {
		if now.Sub(b.lastSeen) > 2*tb.refillRate {
			delete(tb.buckets, key)
		}
	}
}

// Len returns the number of tracked keys
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

// Close stops the cleanup goroutine
func (tb *TokenBucket) Close() error {
	tb.closeOnce.Do(func() {
		close(tb.done)
		if tb.cleanup != nil {
			tb.cleanup.Stop()
		}
	})
	return nil
}
