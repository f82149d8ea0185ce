package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	maps "googlemaps.github.io/maps"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/obs"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// GoogleProvider implements RouteProvider over the Google Maps Directions and
// Distance Matrix APIs.
//
// This is the secondary backend: global coverage, but externally hosted and
// metered. Callers go through the fallback controller, which charges the
// shared call budget before any request lands here.
type GoogleProvider struct {
	client *maps.Client
}

func NewGoogleProvider(apiKey string, extra ...maps.ClientOption) (*GoogleProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google maps api key is empty")
	}

	opts := append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, extra...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}

	return &GoogleProvider{client: client}, nil
}

func (g *GoogleProvider) Name() string { return "google" }

// googleMode maps the domain profile onto Google travel modes. Motorcycle
// rides the driving mode; the Directions API has no two-wheeler mode here.
func googleMode(p domain.Profile) maps.Mode {
	if p == domain.ProfileBike {
		return maps.TravelModeBicycling
	}
	return maps.TravelModeDriving
}

// googleLatLng renders a point in Google wire order ("lat,lng" string).
// The swap relative to other backends stays inside this adapter.
func googleLatLng(p domain.Point) string {
	return fmt.Sprintf("%f,%f", p.Latitude, p.Longitude)
}

func (g *GoogleProvider) ComputeRoute(
	ctx context.Context,
	points []domain.Point,
	profile domain.Profile,
	opts domain.RouteOptions,
) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "google.ComputeRoute")(&err)

	if len(points) < 2 {
		return ports.RouteResult{}, errors.New("compute route: need at least two points")
	}

	req := &maps.DirectionsRequest{
		Origin:      googleLatLng(points[0]),
		Destination: googleLatLng(points[len(points)-1]),
		Mode:        googleMode(profile),
		Units:       maps.UnitsMetric,
	}
	for _, p := range points[1 : len(points)-1] {
		req.Waypoints = append(req.Waypoints, googleLatLng(p))
	}
	if opts.AvoidHighways {
		req.Avoid = append(req.Avoid, maps.AvoidHighways)
	}
	if opts.AvoidTolls {
		req.Avoid = append(req.Avoid, maps.AvoidTolls)
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return ports.RouteResult{}, g.classifyErr(err)
	}
	if len(routes) == 0 {
		return ports.RouteResult{}, errors.New("google returned no routes")
	}

	route := routes[0]

	var meters int
	var duration time.Duration
	var instructions []string
	for _, leg := range route.Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
		for _, step := range leg.Steps {
			if txt := stripHTML(step.HTMLInstructions); txt != "" {
				instructions = append(instructions, txt)
			}
		}
	}

	return ports.RouteResult{
		DistanceMeters:  meters,
		DurationSeconds: int(math.Round(duration.Seconds())),
		Geometry:        route.OverviewPolyline.Points,
		Instructions:    instructions,
	}, nil
}

// ComputeMatrix fetches the full pairwise matrix in a single NxN call.
func (g *GoogleProvider) ComputeMatrix(
	ctx context.Context,
	points []domain.Point,
	profile domain.Profile,
) (_ [][]ports.MatrixEntry, err error) {
	defer obs.Time(ctx, "google.ComputeMatrix")(&err)

	if len(points) < 2 {
		return nil, errors.New("compute matrix: need at least two points")
	}

	coords := make([]string, 0, len(points))
	for _, p := range points {
		coords = append(coords, googleLatLng(p))
	}

	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      coords,
		Destinations: coords,
		Mode:         googleMode(profile),
		Units:        maps.UnitsMetric,
	})
	if err != nil {
		return nil, g.classifyErr(err)
	}

	n := len(points)
	if len(resp.Rows) != n {
		return nil, fmt.Errorf("matrix rows do not match points: rows=%d points=%d", len(resp.Rows), n)
	}

	matrix := make([][]ports.MatrixEntry, n)
	for i, row := range resp.Rows {
		if len(row.Elements) != n {
			return nil, fmt.Errorf("matrix row %d has wrong length", i)
		}

		matrix[i] = make([]ports.MatrixEntry, n)
		for j, el := range row.Elements {
			if el.Status != "OK" {
				matrix[i][j] = ports.MatrixEntry{Reachable: false}
				continue
			}

			matrix[i][j] = ports.MatrixEntry{
				DistanceMeters:  el.Distance.Meters,
				DurationSeconds: int(math.Round(el.Duration.Seconds())),
				Reachable:       true,
			}
		}
	}

	return matrix, nil
}

// classifyErr maps SDK errors onto the typed taxonomy. The maps client
// surfaces API status codes inside error strings.
func (g *GoogleProvider) classifyErr(err error) error {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "OVER_QUERY_LIMIT"),
		strings.Contains(msg, "OVER_DAILY_LIMIT"),
		strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "rateLimitExceeded"):
		return &domain.ProviderRateLimitedError{Provider: g.Name(), RetryAfter: 30 * time.Second}
	case strings.Contains(msg, "UNKNOWN_ERROR"):
		return &domain.ProviderUnavailableError{Provider: g.Name(), Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.ProviderUnavailableError{Provider: g.Name(), Err: err}
	}

	return fmt.Errorf("google directions: %w", err)
}

// stripHTML removes markup from Google step instructions, leaving plain text.
func stripHTML(s string) string {
	out := make([]rune, 0, len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out = append(out, r)
		}
	}
	return strings.TrimSpace(string(out))
}
