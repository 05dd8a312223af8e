package govern

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/peoplemesh/govern/internal/cache"
	"github.com/peoplemesh/govern/internal/config"
	"github.com/peoplemesh/govern/internal/metrics"
	"github.com/peoplemesh/govern/internal/resilience"
	"github.com/peoplemesh/govern/internal/usage"
)

// Outcome labels for the requests_total metric.
const (
	outcomeSuccess  = "success"
	outcomeFallback = "fallback"
	outcomeError    = "error"
)

// baseBackoff is the pause before the second attempt; it doubles per
// attempt afterwards.
const baseBackoff = 250 * time.Millisecond

// Governor is the single public surface of this library. One instance is
// shared by all logical callers of a process, so its breaker, cache, and
// usage counters govern the process as a whole.
//
// Governor is safe for concurrent use by multiple goroutines. Retries
// suspend only the call they belong to.
type Governor struct {
	config  ConfigProvider
	cache   Cache
	keys    *cache.KeyGenerator
	usage   *usage.Tracker
	breaker *resilience.Breaker
	logger  *slog.Logger

	metricsEnabled bool

	// sleep pauses between retry attempts. Replaced in tests so backoff
	// sequences can be observed without real time passing.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Governor with the given options.
func New(opts ...Option) (*Governor, error) {
	cfg := defaultGovernorConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.applyDefaults()

	g := &Governor{
		config:         cfg.ConfigProvider,
		cache:          cfg.Cache,
		keys:           cache.NewKeyGenerator(cfg.KeyNamespace),
		usage:          usage.NewTracker(cfg.UsageWindow),
		breaker:        resilience.NewBreaker(),
		logger:         cfg.Logger,
		metricsEnabled: cfg.MetricsEnabled,
		sleep:          sleepContext,
	}
	return g, nil
}

// Execute runs one governed call.
//
// It reads a fresh config snapshot, checks the circuit breaker and the
// global and tenant budgets, then hands the operation to the retry loop.
// Guard rejections and retry exhaustion both fall back to a live cache entry
// when one exists for the request's key; otherwise the call fails with an
// error identifying the guard that rejected it.
func (g *Governor) Execute(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("request is nil")
	}
	if req.Operation == "" {
		return nil, errors.New("operation name is required")
	}
	if req.Do == nil {
		return nil, errors.New("operation callback is required")
	}

	cfg := g.config.Snapshot().Normalized()

	tenant := req.Tenant
	if tenant == "" {
		tenant = cfg.DefaultTenant
	}

	logger := g.logger.With(
		"request_id", uuid.NewString(),
		"operation", req.Operation,
		"tenant", tenant,
	)

	key := g.resolveKey(req)

	if !g.breaker.Allow() {
		return g.fallback(ctx, logger, req, key, "circuit breaker active",
			&GovernorError{Op: req.Operation, Tenant: tenant, Guard: ErrBreakerOpen})
	}
	if g.usage.OverLimit(usage.ScopeGlobal, cfg.GlobalDailyBudget) {
		return g.fallback(ctx, logger, req, key, "global budget exhausted",
			&GovernorError{Op: req.Operation, Tenant: tenant, Guard: ErrGlobalBudgetExhausted})
	}
	if g.usage.OverLimit(tenant, cfg.TenantDailyQuota) {
		return g.fallback(ctx, logger, req, key, "tenant quota exhausted",
			&GovernorError{Op: req.Operation, Tenant: tenant, Guard: ErrTenantQuotaExhausted})
	}

	return g.executeWithRetry(ctx, logger, req, tenant, key, cfg)
}

// Close releases the cache backend.
func (g *Governor) Close() error {
	err := g.cache.Close()
	g.logger.Info("governor closed")
	return err
}

// BreakerState reports the circuit breaker state ("closed" or "open").
func (g *Governor) BreakerState() string {
	return g.breaker.State().String()
}

// GlobalUnits returns the units consumed from the shared budget in the
// current window.
func (g *Governor) GlobalUnits() int64 {
	return g.usage.Units(usage.ScopeGlobal)
}

// TenantUnits returns the units consumed by a tenant in its current window.
func (g *Governor) TenantUnits(tenant string) int64 {
	return g.usage.Units(tenant)
}

// CacheStats returns counters from the underlying cache backend.
func (g *Governor) CacheStats() CacheStats {
	return g.cache.Stats()
}

// Private methods

func (g *Governor) executeWithRetry(
	ctx context.Context,
	logger *slog.Logger,
	req *Request,
	tenant string,
	key string,
	cfg config.Snapshot,
) (*Result, error) {
	var lastErr error
	tried := 0

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		tried = attempt
		if g.metricsEnabled {
			metrics.AttemptsTotal.WithLabelValues(req.Operation).Inc()
		}

		start := time.Now()
		value, u, err := req.Do(ctx)
		elapsed := time.Since(start)

		if err == nil {
			g.breaker.RecordSuccess()

			units := u.Units
			if units > 0 {
				g.usage.Record(usage.ScopeGlobal, units)
				g.usage.Record(tenant, units)
				if g.metricsEnabled {
					metrics.UnitsConsumed.WithLabelValues(tenant).Add(float64(units))
				}
			}

			logger.Info("completion succeeded",
				"attempt", attempt,
				"duration_ms", elapsed.Milliseconds(),
				"units", units,
				"prompt", snippet(req.PromptSnippet),
			)

			g.storeInCache(ctx, logger, req, tenant, key, value, cfg.CacheTTL)

			if g.metricsEnabled {
				metrics.RequestsTotal.WithLabelValues(req.Operation, outcomeSuccess).Inc()
			}
			return &Result{Value: value, Attempts: attempt, Units: units}, nil
		}

		lastErr = err

		if g.breaker.RecordFailure(cfg.BreakerThreshold, cfg.BreakerCooldown) {
			if g.metricsEnabled {
				metrics.BreakerTrips.Inc()
			}
			logger.Warn("circuit breaker opened",
				"failures", cfg.BreakerThreshold,
				"cooldown_ms", cfg.BreakerCooldown.Milliseconds(),
			)
		}

		logger.Warn("completion attempt failed",
			"attempt", attempt,
			"duration_ms", elapsed.Milliseconds(),
			"error", truncate(err.Error(), maxErrorLen),
			"prompt", snippet(req.PromptSnippet),
		)

		if attempt < cfg.MaxAttempts {
			if serr := g.sleep(ctx, backoffDelay(attempt)); serr != nil {
				lastErr = serr
				break
			}
		}
	}

	gerr := &GovernorError{
		Op:       req.Operation,
		Tenant:   tenant,
		Attempts: tried,
		Guard:    ErrRetriesExhausted,
		Err:      lastErr,
	}
	return g.fallback(ctx, logger, req, key, "retries exhausted", gerr)
}

// fallback serves a live cache entry when one exists for the request's key,
// otherwise surfaces gerr.
func (g *Governor) fallback(
	ctx context.Context,
	logger *slog.Logger,
	req *Request,
	key string,
	reason string,
	gerr *GovernorError,
) (*Result, error) {
	if key != "" {
		data, err := g.cache.Get(ctx, key)
		if err != nil {
			logger.Debug("cache lookup failed", "error", err)
		}
		if data != nil {
			env, derr := cache.DecodeCompletion(data)
			if derr == nil {
				if g.metricsEnabled {
					metrics.CacheHits.Inc()
					metrics.FallbacksTotal.WithLabelValues(reason).Inc()
					metrics.RequestsTotal.WithLabelValues(req.Operation, outcomeFallback).Inc()
				}
				logger.Warn("serving cached completion",
					"reason", reason,
					"cached_at", env.Timestamp,
				)
				return &Result{Value: env.Value, Cached: true}, nil
			}
			logger.Debug("cache entry undecodable", "error", derr)
		}
	}

	if g.metricsEnabled {
		metrics.CacheMisses.Inc()
		metrics.RequestsTotal.WithLabelValues(req.Operation, outcomeError).Inc()
	}
	logger.Warn("request rejected", "reason", reason)
	return nil, gerr
}

// resolveKey returns the request's explicit cache key, or derives one from
// the operation name and ordered key parts. An empty return disables
// caching for the call.
func (g *Governor) resolveKey(req *Request) string {
	if req.CacheKey != "" {
		return req.CacheKey
	}

	key, err := g.keys.Generate(req.Operation, req.KeyParts...)
	if err != nil {
		g.logger.Warn("cache key derivation failed, caching disabled for this call",
			"operation", req.Operation,
			"error", err,
		)
		return ""
	}
	return key
}

func (g *Governor) storeInCache(
	ctx context.Context,
	logger *slog.Logger,
	req *Request,
	tenant string,
	key string,
	value string,
	ttl time.Duration,
) {
	if key == "" {
		return
	}

	data, err := cache.EncodeCompletion(cache.CachedCompletion{
		Timestamp: time.Now().Unix(),
		Operation: req.Operation,
		Tenant:    tenant,
		Value:     value,
	})
	if err != nil {
		logger.Debug("cache encode failed", "error", err)
		return
	}

	if err := g.cache.Set(ctx, key, data, ttl); err != nil {
		logger.Debug("cache store failed", "error", err)
	}
}

// backoffDelay returns the pause after the given attempt: 250ms for attempt
// 1, doubling per attempt.
func backoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 20 {
		attempt = 20
	}
	return baseBackoff << (attempt - 1)
}

// sleepContext pauses for d without blocking sibling calls, aborting early
// if ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
