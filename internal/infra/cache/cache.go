// Package cache provides a simple in-memory TTL cache, used to avoid
// hammering the finance API for dashboard snapshots that change slowly.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTL is a thread-safe in-memory cache where every entry lives for a
// fixed duration.
type TTL[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	ttl   time.Duration
}

// New creates a cache with the given entry lifetime and starts a
// background sweep of expired entries.
func New[T any](ttl time.Duration) *TTL[T] {
	c := &TTL[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
	}
	go c.sweep()
	return c
}

// Get retrieves a value. Returns false if absent or expired.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the configured TTL.
func (c *TTL[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes a value.
func (c *TTL[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// sweep periodically removes expired entries so the map does not grow
// without bound between reads.
func (c *TTL[T]) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for k, v := range c.items {
			if now.After(v.expiresAt) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
