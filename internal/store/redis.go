package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/conduit-lang/podreg/runtime/pod"
)

// RedisStore keeps the snapshot as a JSON document under one key
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore creates a store using an existing client.
// The snapshot lives at prefix + "snapshot".
func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		key:    prefix + "snapshot",
		logger: logger,
	}
}

// Save replaces the stored snapshot
func (r *RedisStore) Save(ctx context.Context, snap pod.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	r.logger.Debug("snapshot saved", zap.String("id", snap.ID), zap.String("key", r.key))
	return nil
}

// Load reads the stored snapshot, or ErrNoSnapshot
func (r *RedisStore) Load(ctx context.Context) (pod.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return pod.Snapshot{}, ErrNoSnapshot
		}
		return pod.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap pod.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return pod.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Close closes the Redis client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
