package hashing

import (
	"sync"
)

// ThreadSafeEvalCache wraps EvalCache with mutex protection for concurrent
// search workers.
type ThreadSafeEvalCache struct {
	cache *EvalCache
	mu    sync.RWMutex
}

// NewThreadSafeEvalCache creates a new thread-safe cache.
// maxCapacity of 0 means unlimited capacity.
func NewThreadSafeEvalCache(maxCapacity int) *ThreadSafeEvalCache {
	return &ThreadSafeEvalCache{
		cache: NewEvalCache(maxCapacity),
	}
}

// Lookup returns the cached score for sig. Lookups update the hit
// counters, so they take the write lock.
func (c *ThreadSafeEvalCache) Lookup(sig Signature) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Lookup(sig)
}

// Store records a score.
func (c *ThreadSafeEvalCache) Store(sig Signature, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Store(sig, score)
}

// Len returns the number of cached entries.
func (c *ThreadSafeEvalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.Len()
}

// Stats returns the number of lookup hits and misses.
func (c *ThreadSafeEvalCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.Stats()
}

// LoadFrom copies entries from an existing cache. Call before concurrent use.
func (c *ThreadSafeEvalCache) LoadFrom(other *EvalCache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entries := range other.hashTable {
		for _, e := range entries {
			c.cache.Store(e.Signature, e.Score)
		}
	}
}

// IsFull returns true if the cache has reached its capacity limit.
// Always returns false for unlimited capacity (maxCapacity = 0).
func (c *ThreadSafeEvalCache) IsFull() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.IsFull()
}
