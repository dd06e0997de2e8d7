package cache

import (
	"context"
	"sync"
	"time"

	"github.com/1cvibe/connectgate/internal/core"
)

type cacheItem[T any] struct {
	value     T
	expiresAt time.Time
}

// Compile-time interface check.
var _ core.PendingStore[struct{}] = (*MemoryStore[struct{}])(nil)

// MemoryStore implements core.PendingStore with in-memory storage.
// Expired items are invisible to Take and Add immediately and are
// reclaimed by Sweep. Suitable for single-instance deployments.
type MemoryStore[T any] struct {
	mu    sync.Mutex
	items map[string]cacheItem[T]
	now   func() time.Time
}

// NewMemoryStore creates a new memory store instance.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{
		items: make(map[string]cacheItem[T]),
		now:   time.Now,
	}
}

// Add stores a value unless an unexpired value already exists under key.
func (m *MemoryStore[T]) Add(ctx context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if item, exists := m.items[key]; exists && now.Before(item.expiresAt) {
		return ErrKeyExists
	}

	m.items[key] = cacheItem[T]{
		value:     value,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Take retrieves and removes a value in one step.
func (m *MemoryStore[T]) Take(ctx context.Context, key string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	item, exists := m.items[key]
	if !exists {
		return zero, ErrCacheMiss
	}
	delete(m.items, key)

	// Lazy expiration check
	if !m.now().Before(item.expiresAt) {
		return zero, ErrCacheMiss
	}
	return item.value, nil
}

// Delete removes a key from the store.
func (m *MemoryStore[T]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Sweep removes every expired item and returns how many were removed.
func (m *MemoryStore[T]) Sweep(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of items held, including expired ones not yet swept.
func (m *MemoryStore[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close cleans up resources.
func (m *MemoryStore[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]cacheItem[T])
	return nil
}

// Health checks if the store is healthy (always true for memory store).
func (m *MemoryStore[T]) Health(ctx context.Context) error {
	return nil
}
