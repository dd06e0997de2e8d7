package core

import (
	"context"
	"time"
)

// PendingStore[T] holds short-lived, single-use values such as outstanding
// OAuth state records. T is the stored value type.
type PendingStore[T any] interface {
	// Add stores value under key for ttl.
	// Returns ErrKeyExists if the key is already present and unexpired.
	Add(ctx context.Context, key string, value T, ttl time.Duration) error

	// Take atomically retrieves and removes the value stored under key.
	// Returns ErrCacheMiss if the key does not exist or has expired.
	Take(ctx context.Context, key string) (T, error)

	// Delete removes a key without reading it
	Delete(ctx context.Context, key string) error

	// Close closes the store connection
	Close() error

	// Health checks if the store is healthy
	Health(ctx context.Context) error
}
