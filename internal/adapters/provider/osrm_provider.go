package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/obs"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// OSRMProvider implements RouteProvider against a self-hosted OSRM instance.
//
// OSRM is the primary backend: cheap per call but limited to the region its
// extract covers. Coverage itself is checked by the normalizer before any
// call reaches this adapter.
//
// The provider is safe for concurrent use.
type OSRMProvider struct {
	session *http.Client
	baseURL string
}

func NewOSRMProvider(baseURL string) (*OSRMProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("OSRM base URL is empty")
	}

	return &OSRMProvider{
		session: &http.Client{Timeout: 5 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (o *OSRMProvider) Name() string { return "osrm" }

// osrmProfile maps the domain profile onto OSRM profile names. Car and
// motorcycle share the driving profile of the standard extract.
func osrmProfile(p domain.Profile) string {
	if p == domain.ProfileBike {
		return "cycling"
	}
	return "driving"
}

// osrmCoords renders points in OSRM wire order.
//
// Contract: OSRM expects "lon,lat" pairs in the URL path, the reverse of the
// domain's named latitude/longitude representation. This is the only place
// the swap happens (see the wire-order contract test).
func osrmCoords(points []domain.Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("%f,%f", p.Longitude, p.Latitude))
	}
	return strings.Join(parts, ";")
}

type osrmRouteResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry string  `json:"geometry"`
		Legs     []struct {
			Steps []struct {
				Name     string `json:"name"`
				Maneuver struct {
					Type     string `json:"type"`
					Modifier string `json:"modifier"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

func (o *OSRMProvider) ComputeRoute(
	ctx context.Context,
	points []domain.Point,
	profile domain.Profile,
	opts domain.RouteOptions,
) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "osrm.ComputeRoute")(&err)

	if len(points) < 2 {
		return ports.RouteResult{}, errors.New("compute route: need at least two points")
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s", o.baseURL, osrmProfile(profile), osrmCoords(points))

	q := url.Values{}
	q.Set("overview", "full")
	q.Set("steps", "true")
	q.Set("geometries", "polyline")
	if ex := osrmExclude(opts); ex != "" {
		q.Set("exclude", ex)
	}

	req, err := o.newRequest(ctx, endpoint+"?"+q.Encode())
	if err != nil {
		return ports.RouteResult{}, err
	}

	resp, err := o.do(req)
	if err != nil {
		return ports.RouteResult{}, err
	}
	defer resp.Body.Close()

	var decoded osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("decode route response: %w", err)
	}

	if decoded.Code != "Ok" {
		return ports.RouteResult{}, fmt.Errorf("OSRM route failed: %s: %s", decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 {
		return ports.RouteResult{}, errors.New("OSRM returned no routes")
	}

	route := decoded.Routes[0]

	var instructions []string
	for _, leg := range route.Legs {
		for _, step := range leg.Steps {
			instructions = append(instructions, formatManeuver(step.Maneuver.Type, step.Maneuver.Modifier, step.Name))
		}
	}

	// OSRM returns float metrics; round to nearest integer for domain consistency.
	return ports.RouteResult{
		DistanceMeters:  int(math.Round(route.Distance)),
		DurationSeconds: int(math.Round(route.Duration)),
		Geometry:        route.Geometry,
		Instructions:    instructions,
	}, nil
}

type osrmTableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

// ComputeMatrix fetches the full pairwise table in a single call.
func (o *OSRMProvider) ComputeMatrix(
	ctx context.Context,
	points []domain.Point,
	profile domain.Profile,
) (_ [][]ports.MatrixEntry, err error) {
	defer obs.Time(ctx, "osrm.ComputeMatrix")(&err)

	if len(points) < 2 {
		return nil, errors.New("compute matrix: need at least two points")
	}

	endpoint := fmt.Sprintf("%s/table/v1/%s/%s", o.baseURL, osrmProfile(profile), osrmCoords(points))

	q := url.Values{}
	q.Set("annotations", "duration,distance")

	req, err := o.newRequest(ctx, endpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	resp, err := o.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode table response: %w", err)
	}

	if decoded.Code != "Ok" {
		return nil, fmt.Errorf("OSRM table failed: %s: %s", decoded.Code, decoded.Message)
	}

	n := len(points)
	if len(decoded.Durations) != n || len(decoded.Distances) != n {
		return nil, fmt.Errorf(
			"table dimensions do not match points: durations=%d distances=%d points=%d",
			len(decoded.Durations), len(decoded.Distances), n,
		)
	}

	matrix := make([][]ports.MatrixEntry, n)
	for i := 0; i < n; i++ {
		if len(decoded.Durations[i]) != n || len(decoded.Distances[i]) != n {
			return nil, fmt.Errorf("table row %d has wrong length", i)
		}

		matrix[i] = make([]ports.MatrixEntry, n)
		for j := 0; j < n; j++ {
			durPtr := decoded.Durations[i][j]
			distPtr := decoded.Distances[i][j]

			// Null cells mark unreachable pairs, never zero cost.
			if durPtr == nil || distPtr == nil {
				matrix[i][j] = ports.MatrixEntry{Reachable: false}
				continue
			}

			matrix[i][j] = ports.MatrixEntry{
				DistanceMeters:  int(math.Round(*distPtr)),
				DurationSeconds: int(math.Round(*durPtr)),
				Reachable:       true,
			}
		}
	}

	return matrix, nil
}

func osrmExclude(opts domain.RouteOptions) string {
	var ex []string
	if opts.AvoidHighways {
		ex = append(ex, "motorway")
	}
	if opts.AvoidTolls {
		ex = append(ex, "toll")
	}
	return strings.Join(ex, ",")
}

// formatManeuver renders a human-readable turn instruction from OSRM
// maneuver fields.
func formatManeuver(kind, modifier, road string) string {
	var b strings.Builder

	switch kind {
	case "depart":
		b.WriteString("Depart")
	case "arrive":
		b.WriteString("Arrive")
	case "roundabout", "rotary":
		b.WriteString("Take the roundabout")
	default:
		b.WriteString("Continue")
		if modifier != "" && modifier != "straight" {
			b.Reset()
			b.WriteString("Turn ")
			b.WriteString(modifier)
		}
	}

	if road != "" {
		b.WriteString(" onto ")
		b.WriteString(road)
	}
	return b.String()
}
