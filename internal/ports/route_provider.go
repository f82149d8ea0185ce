package ports

import (
	"context"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// Single-leg (or multi-waypoint) routing result returned by a backend.
type RouteResult struct {
	DistanceMeters  int
	DurationSeconds int
	Geometry        string // encoded polyline
	Instructions    []string
}

// One pairwise cost entry of a distance/time matrix. Unreachable pairs carry
// Reachable=false; their cost fields must be treated as infinite.
type MatrixEntry struct {
	DistanceMeters  int
	DurationSeconds int
	Reachable       bool
}

// Contract implemented identically by the primary and secondary routing
// backends. Implementations never return zero-cost data on failure; they
// raise typed errors the fallback controller interprets.
type RouteProvider interface {
	// Name identifies the backend in errors and logs.
	Name() string
	// ComputeRoute returns distance, duration, geometry and turn instructions
	// for travel through points in the given order.
	ComputeRoute(ctx context.Context, points []domain.Point, profile domain.Profile, opts domain.RouteOptions) (RouteResult, error)
	// ComputeMatrix returns the full pairwise cost matrix over points in one
	// bulk call.
	ComputeMatrix(ctx context.Context, points []domain.Point, profile domain.Profile) ([][]MatrixEntry, error)
}
