package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/siggy-land/siggy/core"
	"github.com/siggy-land/siggy/ports"
)

// RedisStore is a Redis implementation of the NonceStore interface.
// Consume uses GETDEL so concurrent redemptions of one nonce have a single winner.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a new Redis nonce store
func NewRedisStore(client redis.Cmdable) ports.NonceStore {
	return &RedisStore{
		client: client,
		prefix: "siggy:nonce:",
	}
}

// Put registers a nonce in Redis with expiration
func (s *RedisStore) Put(ctx context.Context, nonce, address string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+nonce, address, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes the nonce
func (s *RedisStore) Consume(ctx context.Context, nonce string) (string, error) {
	address, err := s.client.GetDel(ctx, s.prefix+nonce).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrChallengeExpired
		}
		return "", fmt.Errorf("failed to consume nonce: %w", err)
	}
	return address, nil
}
