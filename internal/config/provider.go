package config

import "sync/atomic"

// Provider supplies the governor's current tunables. Implementations must be
// safe for concurrent Snapshot calls; the governor reads one snapshot at the
// top of every request.
type Provider interface {
	Snapshot() Snapshot
}

// Static is a Provider backed by an atomically swappable snapshot. It serves
// embedders that manage configuration themselves and tests that need to
// retune a running governor.
type Static struct {
	snap atomic.Pointer[Snapshot]
}

// NewStatic creates a Static provider with the given snapshot.
func NewStatic(s Snapshot) *Static {
	p := &Static{}
	p.Store(s)
	return p
}

// Snapshot returns the current snapshot.
func (p *Static) Snapshot() Snapshot {
	return *p.snap.Load()
}

// Store atomically replaces the snapshot.
func (p *Static) Store(s Snapshot) {
	s = s.Normalized()
	p.snap.Store(&s)
}
