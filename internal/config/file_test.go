package config

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestFileProvider_InitialLoad(t *testing.T) {
	path := writeConfig(t, "tenant_daily_quota: 100\n")

	p, err := NewFileProvider(path, slog.Default())
	if err != nil {
		t.Fatalf("NewFileProvider() error = %v", err)
	}

	if got := p.Snapshot().TenantDailyQuota; got != 100 {
		t.Errorf("TenantDailyQuota = %d, want 100", got)
	}
}

func TestFileProvider_MissingFile(t *testing.T) {
	if _, err := NewFileProvider("/nonexistent/govern.yaml", nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileProvider_HotReload(t *testing.T) {
	path := writeConfig(t, "tenant_daily_quota: 100\n")

	p, err := NewFileProvider(path, slog.Default())
	if err != nil {
		t.Fatalf("NewFileProvider() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Watch(ctx); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan Snapshot, 1)
	p.OnChange(func(s Snapshot) {
		select {
		case changed <- s:
		default:
		}
	})

	if err := os.WriteFile(path, []byte("tenant_daily_quota: 250\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Reload is debounced; allow generous headroom.
	select {
	case s := <-changed:
		if s.TenantDailyQuota != 250 {
			t.Errorf("reloaded TenantDailyQuota = %d, want 250", s.TenantDailyQuota)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for hot reload")
	}

	if got := p.Snapshot().TenantDailyQuota; got != 250 {
		t.Errorf("Snapshot() after reload = %d, want 250", got)
	}
}

func TestFileProvider_BadReloadKeepsPrevious(t *testing.T) {
	path := writeConfig(t, "tenant_daily_quota: 100\n")

	p, err := NewFileProvider(path, slog.Default())
	if err != nil {
		t.Fatalf("NewFileProvider() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Watch(ctx); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("tenant_daily_quota: [broken\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Give the debounced reload time to run, then confirm the last good
	// snapshot survived.
	time.Sleep(1500 * time.Millisecond)
	if got := p.Snapshot().TenantDailyQuota; got != 100 {
		t.Errorf("Snapshot() after bad reload = %d, want 100", got)
	}
}
