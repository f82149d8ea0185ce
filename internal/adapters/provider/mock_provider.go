package provider

import (
	"context"
	"math"
	"sync"

	"github.com/golang/geo/s2"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

const earthRadiusMeters = 6371000.0

// Straight-line speeds used by the mock to derive durations.
var mockSpeeds = map[domain.Profile]float64{
	domain.ProfileCar:        13.9, // m/s, ~50 km/h
	domain.ProfileBike:       4.2,
	domain.ProfileMotorcycle: 12.5,
}

// MockProvider is a deterministic in-memory RouteProvider for tests. By
// default it answers with great-circle distances; RouteFn/MatrixFn override
// individual operations to script failures or fixed costs.
type MockProvider struct {
	ProviderName string

	RouteFn  func(ctx context.Context, points []domain.Point, profile domain.Profile, opts domain.RouteOptions) (ports.RouteResult, error)
	MatrixFn func(ctx context.Context, points []domain.Point, profile domain.Profile) ([][]ports.MatrixEntry, error)

	mu          sync.Mutex
	routeCalls  int
	matrixCalls int
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{ProviderName: name}
}

func (m *MockProvider) Name() string { return m.ProviderName }

func (m *MockProvider) RouteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.routeCalls
}

func (m *MockProvider) MatrixCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matrixCalls
}

func (m *MockProvider) ComputeRoute(
	ctx context.Context,
	points []domain.Point,
	profile domain.Profile,
	opts domain.RouteOptions,
) (ports.RouteResult, error) {
	m.mu.Lock()
	m.routeCalls++
	m.mu.Unlock()

	if m.RouteFn != nil {
		return m.RouteFn(ctx, points, profile, opts)
	}

	var meters float64
	for i := 0; i+1 < len(points); i++ {
		meters += haversineMeters(points[i], points[i+1])
	}

	speed := mockSpeeds[profile]
	if speed == 0 {
		speed = mockSpeeds[domain.ProfileCar]
	}

	return ports.RouteResult{
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: int(math.Round(meters / speed)),
		Geometry:        "mock",
		Instructions:    []string{"Depart", "Arrive"},
	}, nil
}

func (m *MockProvider) ComputeMatrix(
	ctx context.Context,
	points []domain.Point,
	profile domain.Profile,
) ([][]ports.MatrixEntry, error) {
	m.mu.Lock()
	m.matrixCalls++
	m.mu.Unlock()

	if m.MatrixFn != nil {
		return m.MatrixFn(ctx, points, profile)
	}

	speed := mockSpeeds[profile]
	if speed == 0 {
		speed = mockSpeeds[domain.ProfileCar]
	}

	matrix := make([][]ports.MatrixEntry, len(points))
	for i := range points {
		matrix[i] = make([]ports.MatrixEntry, len(points))
		for j := range points {
			if i == j {
				matrix[i][j] = ports.MatrixEntry{Reachable: true}
				continue
			}
			meters := haversineMeters(points[i], points[j])
			matrix[i][j] = ports.MatrixEntry{
				DistanceMeters:  int(math.Round(meters)),
				DurationSeconds: int(math.Round(meters / speed)),
				Reachable:       true,
			}
		}
	}
	return matrix, nil
}

// haversineMeters is the great-circle distance between two points.
func haversineMeters(a, b domain.Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}
