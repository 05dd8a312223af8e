package govern

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// newTestGovernor builds a governor with a static snapshot, an in-memory
// cache, and an instant sleep that records requested backoff delays.
func newTestGovernor(t *testing.T, snap Snapshot, opts ...Option) (*Governor, *sleepRecorder) {
	t.Helper()

	all := append([]Option{WithSnapshot(snap)}, opts...)
	g, err := New(all...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })

	rec := &sleepRecorder{}
	g.sleep = rec.sleep
	return g, rec
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return nil
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.delays))
	copy(out, r.delays)
	return out
}

// countingOp returns an Operation that counts invocations and delegates to fn.
func countingOp(calls *int, fn Operation) Operation {
	return func(ctx context.Context) (string, Usage, error) {
		*calls++
		return fn(ctx)
	}
}

func succeedWith(value string, units int64) Operation {
	return func(ctx context.Context) (string, Usage, error) {
		return value, Usage{Units: units}, nil
	}
}

func failWith(err error) Operation {
	return func(ctx context.Context) (string, Usage, error) {
		return "", Usage{}, err
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
