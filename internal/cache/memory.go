package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Memory implements an in-memory cache with lazy TTL eviction: an expired
// entry found during lookup is deleted and reported as a miss. There is no
// capacity bound; the governor's key cardinality (one key per distinct
// operation + arguments) keeps growth acceptable for this workload.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64

	now func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt int64 // Unix nano timestamp; 0 means no expiry
}

// NewMemory creates a new in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retrieves a value from the cache, evicting it if expired.
func (c *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, nil
	}

	if entry.expiresAt > 0 && entry.expiresAt <= c.now().UnixNano() {
		c.misses.Add(1)
		// Lazy deletion; no resurrection on later reads.
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}

	c.hits.Add(1)
	// Return a copy to prevent mutation.
	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value with absolute expiry now + ttl.
func (c *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: valueCopy, expiresAt: expiresAt}
	c.mu.Unlock()

	c.sets.Add(1)
	return nil
}

// Delete removes a key from the cache.
func (c *Memory) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Ping always returns nil for the memory cache.
func (c *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close releases resources. The memory cache has none.
func (c *Memory) Close() error {
	return nil
}

// Stats returns cache statistics.
func (c *Memory) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		HitRate: hitRate(hits, misses),
	}
}

// Len returns the number of entries, including not yet evicted expired ones.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush removes all entries.
func (c *Memory) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}
