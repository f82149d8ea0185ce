package domain

import (
	"fmt"
	"time"
)

// Typed failure taxonomy for the route engine. Transient provider errors are
// absorbed by the fallback controller and surface only when retries and
// failover are exhausted; nothing is ever converted into zeroed results.

// Malformed request shape or out-of-range coordinate values.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Point outside every backend's usable region.
type OutOfBoundsError struct {
	Point  Point
	Reason string
}

func (e *OutOfBoundsError) Error() string {
	label := e.Point.Label
	if label == "" {
		label = fmt.Sprintf("(%.4f, %.4f)", e.Point.Latitude, e.Point.Longitude)
	}
	return fmt.Sprintf("point %s is out of bounds: %s", label, e.Reason)
}

// Transient backend failure that survived all retries and failover.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("routing provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// Metered backend budget exhausted or backend-signalled rate limiting.
// RetryAfter is a suggested wait before the caller tries again.
type ProviderRateLimitedError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *ProviderRateLimitedError) Error() string {
	return fmt.Sprintf("routing provider %s rate limited: retry in %s", e.Provider, e.RetryAfter)
}

// Optimization cannot produce a meaningful result: too many unreachable
// pairs, or the stop count exceeds the supported bound.
type OptimizationInfeasibleError struct {
	Reason string
	Hint   string
}

func (e *OptimizationInfeasibleError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("optimization infeasible: %s", e.Reason)
	}
	return fmt.Sprintf("optimization infeasible: %s (%s)", e.Reason, e.Hint)
}

// Commit raced against a change to the day's underlying stop state.
type VersionConflictError struct {
	DayID    string
	Expected string
	Actual   string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("route version conflict for day %s: draft was computed against stale stop state, recompute and retry", e.DayID)
}
