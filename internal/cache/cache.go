// Package cache provides the in-process result cache for dashboard payloads.
package cache

import "sync"

// Memory is a process-lifetime key/value cache guarded by a RWMutex.
// Writers to the transaction, category or rule sets call Clear; readers
// treat a miss as an instruction to recompute.
type Memory struct {
	entries map[string]any
	mu      sync.RWMutex
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]any)}
}

// Get returns the cached value for key, if any.
func (c *Memory) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores a value under key, replacing any previous entry.
func (c *Memory) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Clear drops every entry. Invalidation is deliberately coarse: a single
// new transaction can change breakdowns and merchant lists under many keys.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}

// Len reports the number of cached entries.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
