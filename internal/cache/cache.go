// Package cache provides the bounded-lifetime response store used for
// stale-answer fallback. It supports an in-memory backend and a Redis
// backend for deployments where several processes share one stale pool.
package cache

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// Cache defines the interface for all cache backends.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with absolute expiry now + ttl.
	// A non-positive ttl stores the value without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache is healthy.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats holds cache statistics for monitoring.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// CachedCompletion is the envelope stored for a successful upstream result.
type CachedCompletion struct {
	Timestamp int64  `json:"timestamp"` // Unix timestamp when cached
	Operation string `json:"operation,omitempty"`
	Tenant    string `json:"tenant,omitempty"`
	Value     string `json:"value"`
}

// EncodeCompletion serializes a completion envelope for storage.
func EncodeCompletion(c CachedCompletion) ([]byte, error) {
	return json.Marshal(c)
}

// DecodeCompletion deserializes a stored completion envelope.
func DecodeCompletion(data []byte) (CachedCompletion, error) {
	var c CachedCompletion
	err := json.Unmarshal(data, &c)
	return c, err
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
