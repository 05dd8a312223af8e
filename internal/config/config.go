// Package config supplies the governor's live-reloadable tunables.
//
// The governor reads a fresh Snapshot at the top of every call instead of
// capturing configuration at construction, so operators can retune budgets,
// retry counts, and cooldowns without a restart.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is one consistent view of the governor's tunables.
type Snapshot struct {
	// Model and APIKey identify the upstream; they are passed through to the
	// caller's operation and never interpreted by the governor.
	Model  string
	APIKey string

	// GlobalDailyBudget caps units consumed across all tenants per window.
	// Zero means unlimited.
	GlobalDailyBudget int64

	// TenantDailyQuota caps units consumed per tenant per window.
	// Zero means unlimited.
	TenantDailyQuota int64

	// MaxAttempts bounds the retry loop, floor of 1.
	MaxAttempts int

	// BreakerThreshold is the consecutive failure count that opens the
	// circuit breaker.
	BreakerThreshold int

	// BreakerCooldown is how long the breaker stays open once tripped.
	BreakerCooldown time.Duration

	// CacheTTL is the freshness window for successful results.
	CacheTTL time.Duration

	// DefaultTenant is used when a call omits an explicit tenant.
	DefaultTenant string
}

// Default returns the baseline snapshot.
func Default() Snapshot {
	return Snapshot{
		MaxAttempts:      3,
		BreakerThreshold: 5,
		BreakerCooldown:  5 * time.Minute,
		CacheTTL:         time.Hour,
		DefaultTenant:    "default",
	}
}

// Normalized returns a copy with out-of-range values coerced into the
// ranges the governor relies on.
func (s Snapshot) Normalized() Snapshot {
	if s.MaxAttempts < 1 {
		s.MaxAttempts = 1
	}
	if s.BreakerThreshold < 1 {
		s.BreakerThreshold = 1
	}
	if s.BreakerCooldown < 0 {
		s.BreakerCooldown = 0
	}
	if s.CacheTTL < 0 {
		s.CacheTTL = 0
	}
	if s.DefaultTenant == "" {
		s.DefaultTenant = "default"
	}
	return s
}

// fileSnapshot is the YAML shape of a Snapshot. Durations are plain
// millisecond integers; pointer fields distinguish "omitted" (keep the
// default) from an explicit zero.
type fileSnapshot struct {
	Model             string `yaml:"model"`
	APIKey            string `yaml:"api_key"`
	GlobalDailyBudget *int64 `yaml:"global_daily_budget"`
	TenantDailyQuota  *int64 `yaml:"tenant_daily_quota"`
	MaxAttempts       *int   `yaml:"max_attempts"`
	BreakerThreshold  *int   `yaml:"breaker_threshold"`
	BreakerCooldownMS *int64 `yaml:"breaker_cooldown_ms"`
	CacheTTLMS        *int64 `yaml:"cache_ttl_ms"`
	DefaultTenant     string `yaml:"default_tenant"`
}

// LoadFromFile reads a YAML snapshot, applying defaults for omitted fields.
func LoadFromFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read config: %w", err)
	}

	var fs fileSnapshot
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return Snapshot{}, fmt.Errorf("parse config: %w", err)
	}

	s := Default()
	s.Model = fs.Model
	s.APIKey = fs.APIKey
	if fs.GlobalDailyBudget != nil {
		s.GlobalDailyBudget = *fs.GlobalDailyBudget
	}
	if fs.TenantDailyQuota != nil {
		s.TenantDailyQuota = *fs.TenantDailyQuota
	}
	if fs.MaxAttempts != nil {
		s.MaxAttempts = *fs.MaxAttempts
	}
	if fs.BreakerThreshold != nil {
		s.BreakerThreshold = *fs.BreakerThreshold
	}
	if fs.BreakerCooldownMS != nil {
		s.BreakerCooldown = time.Duration(*fs.BreakerCooldownMS) * time.Millisecond
	}
	if fs.CacheTTLMS != nil {
		s.CacheTTL = time.Duration(*fs.CacheTTLMS) * time.Millisecond
	}
	if fs.DefaultTenant != "" {
		s.DefaultTenant = fs.DefaultTenant
	}

	return s.Normalized(), nil
}
