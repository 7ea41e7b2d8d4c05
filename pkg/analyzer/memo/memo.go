// Package memo provides the explicit memoization tables shared by the
// per-function analyses. Caches are plain structs passed by reference into
// each analysis call, never ambient globals, so the analyzers stay trivially
// testable.
package memo

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/burden-dev/burden/pkg/models"
)

// Kind names an analysis whose results are memoized.
type Kind string

const (
	KindCoverage   Kind = "coverage"
	KindComplexity Kind = "complexity"
	KindPurity     Kind = "purity"
)

// Key hashes a (function id, analysis kind) pair into a cache key.
func Key(id models.FunctionID, kind Kind) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(id.File)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(id.Name)
	_, _ = h.Write([]byte{0, byte(id.Line), byte(id.Line >> 8), byte(id.Line >> 16), byte(id.Line >> 24)})
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(string(kind))
	return h.Sum64()
}

// Cache is a concurrent memoization table for one result type. The zero
// value is not usable; create with New.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[uint64]V
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[uint64]V)}
}

// Get returns the cached value for (id, kind), if present.
func (c *Cache[V]) Get(id models.FunctionID, kind Kind) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[Key(id, kind)]
	return v, ok
}

// Put stores a value for (id, kind).
func (c *Cache[V]) Put(id models.FunctionID, kind Kind, v V) {
	c.mu.Lock()
	c.entries[Key(id, kind)] = v
	c.mu.Unlock()
}

// GetOrCompute returns the cached value or computes, stores, and returns it.
// Compute may run more than once under contention; last write wins, which is
// harmless because every analysis is a deterministic pure function.
func (c *Cache[V]) GetOrCompute(id models.FunctionID, kind Kind, compute func() V) V {
	if v, ok := c.Get(id, kind); ok {
		return v
	}
	v := compute()
	c.Put(id, kind, v)
	return v
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
