package core

import "errors"

// Sentinel error kinds a RecipeSource may wrap and return. The batch
// orchestrator inspects these via errors.Is to decide whether a failure is
// retryable; the coordinator and hook never need to distinguish further.
var (
	// ErrNetworkFailure marks a transient network error. Retryable.
	ErrNetworkFailure = errors.New("network failure")
	// ErrTimeout marks a deadline expiry. Never retried by the orchestrator
	// itself — the deadline already accounts for one full attempt budget.
	ErrTimeout = errors.New("timeout")
	// ErrNotFound marks a package absent from the community repository.
	// Surfaced as a scan error, never silently treated as zero signals.
	ErrNotFound = errors.New("package not found")
	// ErrLocalIO marks a recipe-cache read/write failure.
	ErrLocalIO = errors.New("local I/O failure")
	// ErrConfig marks a fatal configuration error (bad pattern database,
	// unreadable user config). Callers should treat this as fatal at
	// startup, not per-scan.
	ErrConfig = errors.New("configuration error")
)
