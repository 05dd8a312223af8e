// Package resilience provides availability guards for calls to a paid,
// rate-limited upstream completion service.
//
// The circuit breaker here is deliberately simpler than the canonical
// three-state design: there is no half-open probe phase. Once tripped, the
// breaker stays open for a fixed cooldown and then closes unconditionally on
// the next check. For a shared LLM upstream with coarse daily budgets this
// trades a little precision for a much smaller state machine.
package resilience

import (
	"sync"
	"time"
)

// CircuitState represents the current state of the circuit breaker.
type CircuitState int

const (
	// StateClosed allows requests to pass through normally.
	StateClosed CircuitState = iota
	// StateOpen blocks all requests until the cooldown elapses.
	StateOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Breaker is a two-state circuit breaker driven by consecutive failures.
//
// The failure threshold and cooldown are passed on each RecordFailure call
// rather than captured at construction, because the governor reads its
// tunables live on every request.
//
// Breaker is safe for concurrent use by multiple goroutines.
type Breaker struct {
	mu            sync.Mutex
	failureCount  int
	openUntil     time.Time // zero means closed
	onStateChange func(from, to CircuitState)

	now func() time.Time
}

// NewBreaker creates a circuit breaker in the closed state.
func NewBreaker() *Breaker {
	return &Breaker{now: time.Now}
}

// OnStateChange sets a callback for state transitions.
func (b *Breaker) OnStateChange(fn func(from, to CircuitState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// Allow reports whether a request may proceed.
//
// The open -> closed transition is evaluated lazily here: the first check at
// or after the cooldown deadline closes the breaker and zeroes the failure
// count as a side effect.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.openUntil.IsZero() {
		return true
	}
	if b.now().Before(b.openUntil) {
		return false
	}

	// Cooldown elapsed; close unconditionally.
	b.openUntil = time.Time{}
	b.failureCount = 0
	b.notify(StateOpen, StateClosed)
	return true
}

// RecordSuccess resets the consecutive failure count. It does not touch an
// active cooldown; an open breaker closes only via Allow.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount = 0
}

// RecordFailure increments the consecutive failure count and trips the
// breaker once the count reaches threshold, setting the cooldown deadline to
// now + cooldown. Tripping again while already open within its cooldown is a
// no-op and does not extend the deadline.
//
// It returns true when this call opened the breaker.
func (b *Breaker) RecordFailure(threshold int, cooldown time.Duration) bool {
	if threshold < 1 {
		threshold = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	if b.failureCount < threshold {
		return false
	}

	now := b.now()
	if !b.openUntil.IsZero() && now.Before(b.openUntil) {
		// Already open within its cooldown.
		return false
	}

	b.openUntil = now.Add(cooldown)
	b.notify(StateClosed, StateOpen)
	return true
}

// State returns the current circuit state without side effects.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.openUntil.IsZero() || !b.now().Before(b.openUntil) {
		return StateClosed
	}
	return StateOpen
}

// FailureCount returns the consecutive failure count.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// Reset forces the breaker back to closed and clears the failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasOpen := !b.openUntil.IsZero() && b.now().Before(b.openUntil)
	b.openUntil = time.Time{}
	b.failureCount = 0
	if wasOpen {
		b.notify(StateOpen, StateClosed)
	}
}

func (b *Breaker) notify(from, to CircuitState) {
	if b.onStateChange != nil {
		// Run the callback outside the lock.
		go b.onStateChange(from, to)
	}
}
