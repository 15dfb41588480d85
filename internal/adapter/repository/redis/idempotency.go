package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "famledger:idempotency:"

// IdempotencyStore implements usecase.IdempotencyStore on Redis. The stored
// value is the serialized response of the first request with a given key, so
// a retried request replays the original outcome instead of transferring
// twice.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// CheckAndSet atomically claims the key. If the key already exists the
// stored response is returned with exists=true and nothing is written.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := idempotencyPrefix + key

	set, err := s.client.SetNX(ctx, fullKey, response, ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("setnx idempotency key: %w", err)
	}

	if set {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		// The key can expire between SetNX and Get. Treat that as a fresh
		// request rather than failing it.
		if errors.Is(err, redis.Nil) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("get idempotency key: %w", err)
	}

	return true, existing, nil
}

// Update replaces the claimed placeholder with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, idempotencyPrefix+key, response, ttl).Err(); err != nil {
		return fmt.Errorf("update idempotency key: %w", err)
	}

	return nil
}
