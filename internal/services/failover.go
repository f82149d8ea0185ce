package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/atomic"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/budget"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// Retry and backoff schedule for the primary backend. Attempts are spaced by
// BaseBackoff doubling each time: 200ms, 400ms, 800ms with the defaults.
type FailoverPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

func DefaultFailoverPolicy() FailoverPolicy {
	return FailoverPolicy{MaxAttempts: 4, BaseBackoff: 200 * time.Millisecond}
}

// FailoverProvider is the decorator every provider call goes through.
//
// Selection per call: points fully inside primary coverage use the primary
// with retries; anything else goes to the metered secondary, charged against
// the shared call budget. Once a call has failed over, the rest of the same
// request stays on the secondary to avoid mixing providers within one
// segment set.
//
// Construct one per request; the sticky failover flag must not leak across
// requests.
type FailoverProvider struct {
	primary   ports.RouteProvider
	secondary ports.RouteProvider
	coverage  *Coverage
	budget    budget.Budget
	policy    FailoverPolicy

	failedOver *atomic.Bool
}

func NewFailoverProvider(
	primary ports.RouteProvider,
	secondary ports.RouteProvider,
	coverage *Coverage,
	b budget.Budget,
	policy FailoverPolicy,
) *FailoverProvider {
	if policy.MaxAttempts < 1 {
		policy = DefaultFailoverPolicy()
	}
	return &FailoverProvider{
		primary:    primary,
		secondary:  secondary,
		coverage:   coverage,
		budget:     b,
		policy:     policy,
		failedOver: atomic.NewBool(false),
	}
}

func (f *FailoverProvider) Name() string { return "failover" }

func (f *FailoverProvider) ComputeRoute(
	ctx context.Context,
	points []domain.Point,
	profile domain.Profile,
	opts domain.RouteOptions,
) (ports.RouteResult, error) {
	useSecondary, err := f.selectSecondary(points)
	if err != nil {
		return ports.RouteResult{}, err
	}

	if !useSecondary {
		var result ports.RouteResult
		err := f.withRetry(ctx, func() error {
			var callErr error
			result, callErr = f.primary.ComputeRoute(ctx, points, profile, opts)
			return callErr
		})
		if err == nil {
			return result, nil
		}
		if !failoverTrigger(err) || f.secondary == nil {
			return ports.RouteResult{}, err
		}
		f.failedOver.Store(true)
	}

	if err := f.takeBudget(ctx); err != nil {
		return ports.RouteResult{}, err
	}
	return f.secondary.ComputeRoute(ctx, points, profile, opts)
}

func (f *FailoverProvider) ComputeMatrix(
	ctx context.Context,
	points []domain.Point,
	profile domain.Profile,
) ([][]ports.MatrixEntry, error) {
	useSecondary, err := f.selectSecondary(points)
	if err != nil {
		return nil, err
	}

	if !useSecondary {
		var matrix [][]ports.MatrixEntry
		err := f.withRetry(ctx, func() error {
			var callErr error
			matrix, callErr = f.primary.ComputeMatrix(ctx, points, profile)
			return callErr
		})
		if err == nil {
			return matrix, nil
		}
		if !failoverTrigger(err) || f.secondary == nil {
			return nil, err
		}
		f.failedOver.Store(true)
	}

	if err := f.takeBudget(ctx); err != nil {
		return nil, err
	}
	return f.secondary.ComputeMatrix(ctx, points, profile)
}

// selectSecondary decides, per call, whether the secondary backend handles
// it. A point outside primary coverage with no secondary configured is out
// of bounds for the whole deployment.
func (f *FailoverProvider) selectSecondary(points []domain.Point) (bool, error) {
	if f.failedOver.Load() {
		return true, nil
	}
	if f.primary == nil {
		if f.secondary == nil {
			return false, errors.New("no routing backend configured")
		}
		return true, nil
	}
	if f.coverage == nil || f.coverage.ContainsAll(points) {
		return false, nil
	}

	if f.secondary == nil {
		p, _ := f.coverage.FirstOutside(points)
		return false, &domain.OutOfBoundsError{
			Point:  p,
			Reason: "outside primary backend coverage and no secondary backend configured",
		}
	}
	return true, nil
}

// takeBudget charges one metered call, translating exhaustion into the
// rate-limited taxonomy with the suggested wait.
func (f *FailoverProvider) takeBudget(ctx context.Context) error {
	if f.budget == nil {
		return nil
	}

	if err := f.budget.Take(ctx, 1); err != nil {
		var exhausted *budget.ExhaustedError
		if errors.As(err, &exhausted) {
			return &domain.ProviderRateLimitedError{
				Provider:   f.secondary.Name(),
				RetryAfter: exhausted.SuggestedWait,
			}
		}
		return err
	}
	return nil
}

// withRetry retries transient primary failures with exponential backoff
// while respecting context cancellation.
func (f *FailoverProvider) withRetry(ctx context.Context, op func() error) error {
	backoff := f.policy.BaseBackoff
	var lastErr error

	for attempt := 1; attempt <= f.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt == f.policy.MaxAttempts {
			return lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return lastErr
}

// retryable: transient failures worth another attempt on the same backend.
func retryable(err error) bool {
	var unavailable *domain.ProviderUnavailableError
	return errors.As(err, &unavailable)
}

// failoverTrigger: errors that justify abandoning the primary for the rest
// of the request. Rate limiting skips straight to failover without retries.
func failoverTrigger(err error) bool {
	if retryable(err) {
		return true
	}
	var limited *domain.ProviderRateLimitedError
	return errors.As(err, &limited)
}
