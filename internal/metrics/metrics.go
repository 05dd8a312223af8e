// Package metrics exposes Prometheus metrics for the request governor.
// All collectors are registered on the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "govern"

var (
	// RequestsTotal counts governed calls by final outcome
	// (success, fallback, error).
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Governed requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// AttemptsTotal counts individual upstream attempts, including retries.
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_attempts_total",
			Help:      "Upstream attempts by operation, retries included",
		},
		[]string{"operation"},
	)

	// FallbacksTotal counts stale-cache fallbacks by triggering reason.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_fallbacks_total",
			Help:      "Stale cache fallbacks by triggering guard",
		},
		[]string{"reason"},
	)

	// BreakerTrips counts closed -> open transitions.
	BreakerTrips = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_trips_total",
			Help:      "Circuit breaker trips",
		},
	)

	// CacheHits counts fallback lookups that found a live entry.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Fallback cache lookups that found a live entry",
		},
	)

	// CacheMisses counts fallback lookups that found nothing usable.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Fallback cache lookups that found nothing usable",
		},
	)

	// UnitsConsumed accumulates reported upstream cost units per tenant.
	UnitsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_consumed_total",
			Help:      "Reported upstream cost units by tenant",
		},
		[]string{"tenant"},
	)
)
