package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_RoundTrip(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}
}

func TestMemory_MissReturnsNil(t *testing.T) {
	c := NewMemory()

	got, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() on absent key = %v, want nil", got)
	}
}

func TestMemory_ExpiryNoResurrection(t *testing.T) {
	c := NewMemory()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Still fresh one ms before expiry.
	now = now.Add(time.Hour - time.Millisecond)
	if got, _ := c.Get(ctx, "k"); string(got) != "v" {
		t.Fatalf("Get() before expiry = %q, want %q", got, "v")
	}

	now = now.Add(time.Millisecond)
	if got, _ := c.Get(ctx, "k"); got != nil {
		t.Errorf("Get() at expiry = %v, want nil", got)
	}

	// Expired entries must stay gone on subsequent reads.
	if got, _ := c.Get(ctx, "k"); got != nil {
		t.Errorf("second Get() after expiry = %v, want nil", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy eviction", c.Len())
	}
}

func TestMemory_NonPositiveTTLNeverExpires(t *testing.T) {
	c := NewMemory()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	now = now.Add(1000 * time.Hour)
	if got, _ := c.Get(ctx, "k"); string(got) != "v" {
		t.Errorf("Get() = %q, want %q for entry without expiry", got, "v")
	}
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := c.Get(ctx, "k"); got != nil {
		t.Errorf("Get() after Delete = %v, want nil", got)
	}
}

func TestMemory_ValueIsolation(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	original := []byte("immutable")
	_ = c.Set(ctx, "k", original, time.Minute)
	original[0] = 'X'

	got, _ := c.Get(ctx, "k")
	if string(got) != "immutable" {
		t.Errorf("stored value mutated: %q", got)
	}

	got[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "immutable" {
		t.Errorf("returned value not copied: %q", again)
	}
}

func TestMemory_Stats(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 set", stats)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", stats.HitRate)
	}
}

func TestCachedCompletion_EncodeDecode(t *testing.T) {
	in := CachedCompletion{
		Timestamp: time.Now().Unix(),
		Operation: "taskSummary",
		Tenant:    "acme",
		Value:     "the summary text",
	}

	data, err := EncodeCompletion(in)
	if err != nil {
		t.Fatalf("EncodeCompletion() error = %v", err)
	}

	out, err := DecodeCompletion(data)
	if err != nil {
		t.Fatalf("DecodeCompletion() error = %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
