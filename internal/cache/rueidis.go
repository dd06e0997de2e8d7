package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/1cvibe/connectgate/internal/core"
	"github.com/redis/rueidis"
)

// Compile-time interface check.
var _ core.PendingStore[struct{}] = (*RueidisStore[struct{}])(nil)

// RueidisStore implements core.PendingStore using Redis via rueidis client.
// Expiry is enforced by Redis key TTLs, so no sweep job is needed.
// Suitable for multi-instance deployments where pending state must be shared.
type RueidisStore[T any] struct {
	client    rueidis.Client
	keyPrefix string
}

// NewRueidisStore creates a new Redis-backed store using rueidis.
func NewRueidisStore[T any](
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
) (*RueidisStore[T], error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true, // Basic mode without client-side caching
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	// Test connection with provided context
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RueidisStore[T]{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

// Add stores a value with SET NX so concurrent writers cannot overwrite each other.
func (r *RueidisStore[T]) Add(ctx context.Context, key string, value T, ttl time.Duration) error {
	fullKey := r.keyPrefix + key

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}

	cmd := r.client.B().Set().
		Key(fullKey).
		Value(string(encoded)).
		Nx().
		PxMilliseconds(ms).
		Build()

	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		// SET NX replies nil when the key was not set
		if rueidis.IsRedisNil(err) {
			return ErrKeyExists
		}
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// Take retrieves and removes a value with GETDEL, so at most one caller sees it.
func (r *RueidisStore[T]) Take(ctx context.Context, key string) (T, error) {
	var zero T
	fullKey := r.keyPrefix + key

	cmd := r.client.B().Getdel().Key(fullKey).Build()
	resp := r.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return zero, ErrCacheMiss
		}
		return zero, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	str, err := resp.ToString()
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	var value T
	if err := json.Unmarshal([]byte(str), &value); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	return value, nil
}

// Delete removes a key from Redis.
func (r *RueidisStore[T]) Delete(ctx context.Context, key string) error {
	fullKey := r.keyPrefix + key

	cmd := r.client.B().Del().Key(fullKey).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// Close closes the Redis connection.
func (r *RueidisStore[T]) Close() error {
	r.client.Close()
	return nil
}

// Health checks if Redis is reachable.
func (r *RueidisStore[T]) Health(ctx context.Context) error {
	cmd := r.client.B().Ping().Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
