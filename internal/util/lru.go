package util

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a thin, typed wrapper around hashicorp/golang-lru so call sites see
// exactly the contract spec'd in §4.O: insertion-ordered, Get promotes the
// accessed key, Set inserts-or-replaces, capacity overflow evicts the oldest
// entry, all operations O(1) average.
type LRU[K comparable, V any] struct {
	inner *lru.Cache[K, V]
}

// NewLRU creates an LRU with the given capacity. Capacity must be positive.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	c, err := lru.New[K, V](capacity)
	if err != nil {
		// Only occurs for non-positive size, which we've already guarded.
		panic(err)
	}
	return &LRU[K, V]{inner: c}
}

// Get returns the value for key and promotes it to most-recently-used.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	return l.inner.Get(key)
}

// Set inserts or replaces the value for key, evicting the oldest entry if
// capacity is exceeded.
func (l *LRU[K, V]) Set(key K, value V) {
	l.inner.Add(key, value)
}

// GetOrCreate returns the existing value for key, or calls create, stores,
// and returns its result if key is absent. Useful for lazily-created
// per-key mutexes (e.g. per-board-directory locks).
func (l *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := l.inner.Get(key); ok {
		return v
	}
	v := create()
	l.inner.Add(key, v)
	return v
}

// Len returns the number of entries currently cached.
func (l *LRU[K, V]) Len() int {
	return l.inner.Len()
}

// Remove deletes key from the cache, if present.
func (l *LRU[K, V]) Remove(key K) {
	l.inner.Remove(key)
}
