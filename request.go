package govern

import "context"

// Usage reports the cost of one upstream call in abstract units (for
// completion APIs, typically tokens). A zero or negative value means the
// upstream reported no usage; that is never an error.
type Usage struct {
	Units int64
}

// Operation performs the actual upstream call. The governor never inspects
// the request it sends; timeout enforcement for the call itself belongs
// inside the operation, not in the governor.
type Operation func(ctx context.Context) (value string, usage Usage, err error)

// Request describes one governed call. It is constructed per call and not
// reused.
type Request struct {
	// Operation names the call for logging, metrics, and cache identity.
	Operation string

	// Tenant is the quota scope. Empty falls back to the configured
	// default tenant.
	Tenant string

	// CacheKey, when set, is used verbatim. Otherwise a key is derived
	// from Operation and KeyParts.
	CacheKey string

	// KeyParts is the ordered argument list hashed into the derived cache
	// key. Strings are used verbatim; other values are JSON-serialized.
	KeyParts []any

	// PromptSnippet is a short text used only for log readability. It is
	// whitespace-collapsed and truncated before logging.
	PromptSnippet string

	// Do performs the upstream call.
	Do Operation
}

// Result is the outcome of a governed call.
type Result struct {
	// Value is the upstream result, or the prior cached result when
	// Cached is true.
	Value string

	// Cached reports that the value was served from the stale-answer
	// cache by a fallback, not by a fresh upstream call.
	Cached bool

	// Attempts is the number of upstream attempts made. Zero when the
	// call never reached the retry loop.
	Attempts int

	// Units is the cost reported by the successful attempt.
	Units int64
}
