package govern

import (
	"log/slog"
	"time"

	"github.com/peoplemesh/govern/internal/cache"
	"github.com/peoplemesh/govern/internal/config"
)

// GovernorConfig holds construction-time wiring for the Governor. Runtime
// tunables (budgets, retry counts, cooldowns) live in the ConfigProvider's
// Snapshot instead, so they can change while the governor runs.
type GovernorConfig struct {
	// ConfigProvider supplies tunables. Defaults to a static provider with
	// DefaultSnapshot.
	ConfigProvider ConfigProvider

	// Cache is the stale-answer store. Defaults to an in-memory cache.
	Cache Cache

	// Logger receives structured per-request log lines. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// KeyNamespace prefixes derived cache keys, isolating governors that
	// share one cache backend.
	KeyNamespace string

	// UsageWindow overrides the accounting window. Zero keeps the rolling
	// 24h default.
	UsageWindow time.Duration

	// MetricsEnabled controls Prometheus metric observation.
	MetricsEnabled bool
}

// Option is a function that configures the Governor.
type Option func(*GovernorConfig)

func defaultGovernorConfig() *GovernorConfig {
	return &GovernorConfig{
		Logger:         slog.Default(),
		KeyNamespace:   "govern",
		MetricsEnabled: true,
	}
}

// WithConfigProvider sets the source of runtime tunables.
func WithConfigProvider(p ConfigProvider) Option {
	return func(c *GovernorConfig) {
		c.ConfigProvider = p
	}
}

// WithSnapshot is shorthand for a static config provider holding s.
func WithSnapshot(s Snapshot) Option {
	return func(c *GovernorConfig) {
		c.ConfigProvider = config.NewStatic(s)
	}
}

// WithCache sets a custom cache backend.
func WithCache(cc Cache) Option {
	return func(c *GovernorConfig) {
		c.Cache = cc
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *GovernorConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithKeyNamespace sets the derived cache key prefix.
func WithKeyNamespace(ns string) Option {
	return func(c *GovernorConfig) {
		c.KeyNamespace = ns
	}
}

// WithUsageWindow overrides the rolling accounting window. Intended for
// tests; production deployments should keep the 24h default.
func WithUsageWindow(d time.Duration) Option {
	return func(c *GovernorConfig) {
		c.UsageWindow = d
	}
}

// WithMetrics enables or disables Prometheus metric observation.
func WithMetrics(enabled bool) Option {
	return func(c *GovernorConfig) {
		c.MetricsEnabled = enabled
	}
}

// applyDefaults fills unset wiring after options have run.
func (c *GovernorConfig) applyDefaults() {
	if c.ConfigProvider == nil {
		c.ConfigProvider = config.NewStatic(config.Default())
	}
	if c.Cache == nil {
		c.Cache = cache.NewMemory()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
