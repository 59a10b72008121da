// Package cache provides a simple in-memory concurrency-safe key-value store,
// used to memoize lookups which would otherwise repeat the same API call.
package cache

import (
	"sync"
)

// Cache is an in-memory concurrency-safe key-value store.
type Cache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// New creates a new [Cache] instance.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{data: make(map[K]V)}
}

// Get retrieves a value from the cache, and also returns a boolean indicating if it was found.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.data[key]
	return v, ok
}

// Set adds or replaces a value in the cache.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
}

// GetOrLoad returns the cached value of a key, or calls the given
// function to load it. Successfully loaded values are cached, errors aren't.
func (c *Cache[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := load(key)
	if err != nil {
		return v, err
	}

	c.Set(key, v)
	return v, nil
}
