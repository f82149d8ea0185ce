package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/provider"
	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/budget"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

var (
	telAvivLeg = []domain.Point{
		{Latitude: 32.0853, Longitude: 34.7818},
		{Latitude: 32.0944, Longitude: 34.7806},
	}
	parisLeg = []domain.Point{
		{Latitude: 48.8566, Longitude: 2.3522},
		{Latitude: 48.8606, Longitude: 2.3376},
	}
)

func fastPolicy() FailoverPolicy {
	return FailoverPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond}
}

func failingPrimary() *provider.MockProvider {
	p := provider.NewMockProvider("primary")
	p.RouteFn = func(context.Context, []domain.Point, domain.Profile, domain.RouteOptions) (ports.RouteResult, error) {
		return ports.RouteResult{}, &domain.ProviderUnavailableError{Provider: "primary", Err: errors.New("connection refused")}
	}
	p.MatrixFn = func(context.Context, []domain.Point, domain.Profile) ([][]ports.MatrixEntry, error) {
		return nil, &domain.ProviderUnavailableError{Provider: "primary", Err: errors.New("connection refused")}
	}
	return p
}

// Primary fails every attempt, secondary answers: the request still succeeds
// with the secondary's values.
func TestFailoverAfterPrimaryRetriesExhaust(t *testing.T) {
	primary := failingPrimary()
	secondary := provider.NewMockProvider("secondary")

	f := NewFailoverProvider(primary, secondary, testCoverage(t), nil, fastPolicy())

	result, err := f.ComputeRoute(context.Background(), telAvivLeg, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)
	assert.Greater(t, result.DistanceMeters, 0)

	assert.Equal(t, 3, primary.RouteCalls())
	assert.Equal(t, 1, secondary.RouteCalls())
}

// Once a request has failed over, its remaining calls stay on the secondary
// to avoid mixing providers within one segment set.
func TestFailoverIsStickyWithinRequest(t *testing.T) {
	primary := failingPrimary()
	secondary := provider.NewMockProvider("secondary")

	f := NewFailoverProvider(primary, secondary, testCoverage(t), nil, fastPolicy())

	_, err := f.ComputeRoute(context.Background(), telAvivLeg, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)
	primaryCalls := primary.RouteCalls()

	_, err = f.ComputeRoute(context.Background(), telAvivLeg, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)

	assert.Equal(t, primaryCalls, primary.RouteCalls())
	assert.Equal(t, 2, secondary.RouteCalls())
}

func TestOutOfCoverageSelectsSecondary(t *testing.T) {
	primary := provider.NewMockProvider("primary")
	secondary := provider.NewMockProvider("secondary")

	f := NewFailoverProvider(primary, secondary, testCoverage(t), nil, fastPolicy())

	_, err := f.ComputeRoute(context.Background(), parisLeg, domain.ProfileCar, domain.RouteOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, primary.RouteCalls())
	assert.Equal(t, 1, secondary.RouteCalls())
}

func TestOutOfCoverageWithoutSecondaryIsOutOfBounds(t *testing.T) {
	primary := provider.NewMockProvider("primary")

	f := NewFailoverProvider(primary, nil, testCoverage(t), nil, fastPolicy())

	_, err := f.ComputeRoute(context.Background(), parisLeg, domain.ProfileCar, domain.RouteOptions{})
	var oob *domain.OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, 0, primary.RouteCalls())
}

func TestExhaustedBudgetRaisesRateLimited(t *testing.T) {
	primary := provider.NewMockProvider("primary")
	secondary := provider.NewMockProvider("secondary")
	b := budget.NewMemory(0, 45*time.Second)

	f := NewFailoverProvider(primary, secondary, testCoverage(t), b, fastPolicy())

	_, err := f.ComputeRoute(context.Background(), parisLeg, domain.ProfileCar, domain.RouteOptions{})
	var limited *domain.ProviderRateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, "secondary", limited.Provider)
	assert.Equal(t, 45*time.Second, limited.RetryAfter)
	assert.Equal(t, 0, secondary.RouteCalls())
}

// Secondary reports rate limiting while the primary is out of coverage: the
// typed error with the retry hint reaches the caller untouched.
func TestSecondaryRateLimitSurfaces(t *testing.T) {
	primary := provider.NewMockProvider("primary")
	secondary := provider.NewMockProvider("secondary")
	secondary.RouteFn = func(context.Context, []domain.Point, domain.Profile, domain.RouteOptions) (ports.RouteResult, error) {
		return ports.RouteResult{}, &domain.ProviderRateLimitedError{Provider: "secondary", RetryAfter: 30 * time.Second}
	}

	f := NewFailoverProvider(primary, secondary, testCoverage(t), nil, fastPolicy())

	_, err := f.ComputeRoute(context.Background(), parisLeg, domain.ProfileCar, domain.RouteOptions{})
	var limited *domain.ProviderRateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 30*time.Second, limited.RetryAfter)
	assert.Equal(t, 0, primary.RouteCalls())
}

func TestNonTransientPrimaryErrorDoesNotFailOver(t *testing.T) {
	primary := provider.NewMockProvider("primary")
	primary.RouteFn = func(context.Context, []domain.Point, domain.Profile, domain.RouteOptions) (ports.RouteResult, error) {
		return ports.RouteResult{}, errors.New("NoRoute: no path between points")
	}
	secondary := provider.NewMockProvider("secondary")

	f := NewFailoverProvider(primary, secondary, testCoverage(t), nil, fastPolicy())

	_, err := f.ComputeRoute(context.Background(), telAvivLeg, domain.ProfileCar, domain.RouteOptions{})
	require.Error(t, err)
	assert.Equal(t, 1, primary.RouteCalls())
	assert.Equal(t, 0, secondary.RouteCalls())
}

func TestMatrixFailoverUsesSecondary(t *testing.T) {
	primary := failingPrimary()
	secondary := provider.NewMockProvider("secondary")

	f := NewFailoverProvider(primary, secondary, testCoverage(t), nil, fastPolicy())

	matrix, err := f.ComputeMatrix(context.Background(), telAvivLeg, domain.ProfileCar)
	require.NoError(t, err)
	assert.Len(t, matrix, 2)
	assert.Equal(t, 3, primary.MatrixCalls())
	assert.Equal(t, 1, secondary.MatrixCalls())
}
