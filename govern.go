// Package govern places a resilient façade in front of calls to a paid,
// rate-limited generative-AI completion service. It combines bounded retries
// with exponential backoff, a circuit breaker, coarse daily cost budgets
// shared across tenants, and a stale-answer cache used as a fallback when a
// guard rejects a call or retries are exhausted.
//
// The governor does not build prompts or parse responses; the caller
// supplies the operation that performs the actual upstream call and reports
// its cost in abstract units.
//
// Basic usage:
//
//	gov, err := govern.New(
//	    govern.WithSnapshot(govern.Snapshot{
//	        GlobalDailyBudget: 1_000_000,
//	        TenantDailyQuota:  50_000,
//	        MaxAttempts:       3,
//	        BreakerThreshold:  5,
//	        BreakerCooldown:   5 * time.Minute,
//	        CacheTTL:          time.Hour,
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gov.Close()
//
//	res, err := gov.Execute(ctx, &govern.Request{
//	    Operation:     "taskSummary",
//	    Tenant:        "acme",
//	    KeyParts:      []any{taskID, lang},
//	    PromptSnippet: prompt,
//	    Do: func(ctx context.Context) (string, govern.Usage, error) {
//	        out, tokens, err := callUpstream(ctx, prompt)
//	        return out, govern.Usage{Units: tokens}, err
//	    },
//	})
package govern

import (
	"log/slog"

	"github.com/peoplemesh/govern/internal/cache"
	"github.com/peoplemesh/govern/internal/config"
)

// Version is the current version of the governor library.
const Version = "0.3.0"

// Re-exported collaborator types so embedders never import internal packages.
type (
	// Snapshot is one consistent view of the governor's tunables.
	Snapshot = config.Snapshot

	// ConfigProvider supplies a fresh Snapshot for every governed call.
	ConfigProvider = config.Provider

	// StaticConfig is a ConfigProvider backed by an atomically swappable
	// snapshot.
	StaticConfig = config.Static

	// FileConfig is a ConfigProvider that hot-reloads a YAML file.
	FileConfig = config.FileProvider

	// Cache is the stale-answer store consulted on fallback.
	Cache = cache.Cache

	// CacheStats holds cache counters for monitoring.
	CacheStats = cache.Stats

	// MemoryCache is the default in-process cache backend.
	MemoryCache = cache.Memory

	// RedisCache is a cache backend shared across processes.
	RedisCache = cache.Redis

	// RedisCacheConfig configures the Redis cache backend.
	RedisCacheConfig = cache.RedisConfig
)

// DefaultSnapshot returns the baseline configuration.
func DefaultSnapshot() Snapshot {
	return config.Default()
}

// NewStaticConfig creates a ConfigProvider from a fixed snapshot. The
// snapshot can be replaced at runtime via Store.
func NewStaticConfig(s Snapshot) *StaticConfig {
	return config.NewStatic(s)
}

// NewFileConfig creates a ConfigProvider that loads a YAML file. Call Watch
// to enable hot reload.
func NewFileConfig(path string, logger *slog.Logger) (*FileConfig, error) {
	return config.NewFileProvider(path, logger)
}

// NewMemoryCache creates the default in-memory cache backend.
func NewMemoryCache() *MemoryCache {
	return cache.NewMemory()
}

// NewRedisCache creates a Redis-backed cache for multi-process deployments.
func NewRedisCache(cfg RedisCacheConfig) (*RedisCache, error) {
	return cache.NewRedis(cfg)
}

// DefaultRedisCacheConfig returns sensible Redis cache defaults.
func DefaultRedisCacheConfig() RedisCacheConfig {
	return cache.DefaultRedisConfig()
}
