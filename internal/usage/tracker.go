// Package usage tracks consumed cost units per accounting scope.
//
// A scope is either the shared global pool or one tenant. Each scope carries
// a rolling 24h window: the window boundary is always window-length from the
// moment it was last reset, not aligned to a calendar day. Counters are held
// in memory only; a restart clears them. That is acceptable for a soft cost
// control signal, which this is, and would not be for a billing ledger,
// which this is not.
package usage

import (
	"sync"
	"time"
)

// ScopeGlobal is the scope id for the shared upstream budget.
const ScopeGlobal = "global"

// DefaultWindow is the accounting window applied when none is configured.
const DefaultWindow = 24 * time.Hour

type scope struct {
	units   int64
	resetAt time.Time
}

// Tracker accumulates cost units per scope with rolling window resets.
// Scopes are created lazily on first use.
//
// Tracker is safe for concurrent use by multiple goroutines.
type Tracker struct {
	mu     sync.Mutex
	window time.Duration
	scopes map[string]*scope

	now func() time.Time
}

// NewTracker creates a tracker with the given window. A non-positive window
// falls back to DefaultWindow.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window: window,
		scopes: make(map[string]*scope),
		now:    time.Now,
	}
}

// Record adds units to the scope's counter. Zero or negative units are
// ignored; an upstream that reports no usage is not an error.
func (t *Tracker) Record(id string, units int64) {
	if units <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.ensure(id)
	s.units += units
}

// OverLimit reports whether the scope's consumed units have reached limit.
// A non-positive limit means unlimited and is never over.
func (t *Tracker) OverLimit(id string, limit int64) bool {
	if limit <= 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.ensure(id).units >= limit
}

// Units returns the scope's consumed units in the current window.
func (t *Tracker) Units(id string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ensure(id).units
}

// ResetAt returns the scope's current window boundary.
func (t *Tracker) ResetAt(id string) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ensure(id).resetAt
}

// ensure returns the scope, creating it lazily and rolling its window if the
// boundary has passed. Callers must hold t.mu.
func (t *Tracker) ensure(id string) *scope {
	now := t.now()

	s, ok := t.scopes[id]
	if !ok {
		s = &scope{resetAt: now.Add(t.window)}
		t.scopes[id] = s
		return s
	}

	if !now.Before(s.resetAt) {
		s.units = 0
		s.resetAt = now.Add(t.window)
	}
	return s
}
