package govern

import (
	"errors"
	"fmt"
)

// Guard sentinels; match with errors.Is.
var (
	// ErrBreakerOpen is returned when the circuit breaker rejects a call.
	ErrBreakerOpen = errors.New("circuit breaker active")

	// ErrGlobalBudgetExhausted is returned when the shared daily budget is
	// spent.
	ErrGlobalBudgetExhausted = errors.New("global budget exhausted")

	// ErrTenantQuotaExhausted is returned when the calling tenant's daily
	// quota is spent.
	ErrTenantQuotaExhausted = errors.New("tenant quota exhausted")

	// ErrRetriesExhausted is returned when every allowed attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// GovernorError is the error type returned by Execute when neither a fresh
// result nor a cached fallback is available. Guard identifies which guard
// rejected the call; for exhausted retries, Err carries the innermost
// upstream error.
type GovernorError struct {
	Op       string
	Tenant   string
	Attempts int
	Guard    error
	Err      error
}

func (e *GovernorError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s (tenant %s): failed after %d attempts: %v",
			e.Op, e.Tenant, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s (tenant %s): %v", e.Op, e.Tenant, e.Guard)
}

func (e *GovernorError) Unwrap() []error {
	var errs []error
	if e.Guard != nil {
		errs = append(errs, e.Guard)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
