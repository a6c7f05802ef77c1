package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of the go-redis API the slot needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisSlot stores the payload under a single redis key without expiry
type RedisSlot struct {
	client RedisClient
	key    string
}

// NewRedisSlot creates a slot on an existing client
func NewRedisSlot(client RedisClient, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key}
}

// Read implements Slot
func (s *RedisSlot) Read(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read redis key %s: %w", s.key, err)
	}
	return data, true, nil
}

// Write implements Slot
func (s *RedisSlot) Write(ctx context.Context, payload []byte) error {
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write redis key %s: %w", s.key, err)
	}
	return nil
}

// Ping implements Pinger
func (s *RedisSlot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements Slot
func (s *RedisSlot) Close() error {
	return s.client.Close()
}
