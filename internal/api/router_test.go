package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarBahar/MyTrip-sub001/internal/api/dto"
	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/obs"
)

type stubEngine struct {
	computeFn   func(ctx context.Context, req domain.RouteRequest) (*domain.RouteVersion, error)
	commitFn    func(ctx context.Context, draft *domain.RouteVersion) (*domain.RouteVersion, error)
	committedFn func(ctx context.Context, dayID string) (*domain.RouteVersion, error)
	historyFn   func(ctx context.Context, dayID string) ([]*domain.RouteVersion, error)
}

func (s *stubEngine) Compute(ctx context.Context, req domain.RouteRequest) (*domain.RouteVersion, error) {
	return s.computeFn(ctx, req)
}

func (s *stubEngine) Commit(ctx context.Context, draft *domain.RouteVersion) (*domain.RouteVersion, error) {
	return s.commitFn(ctx, draft)
}

func (s *stubEngine) Committed(ctx context.Context, dayID string) (*domain.RouteVersion, error) {
	return s.committedFn(ctx, dayID)
}

func (s *stubEngine) History(ctx context.Context, dayID string) ([]*domain.RouteVersion, error) {
	return s.historyFn(ctx, dayID)
}

func sampleVersion(status domain.VersionStatus) *domain.RouteVersion {
	return &domain.RouteVersion{
		ID:        "v-1",
		DayID:     "day-1",
		BaseToken: "tok-1",
		Segments: []domain.Segment{
			{
				From:            domain.Point{Latitude: 32.0853, Longitude: 34.7818},
				To:              domain.Point{Latitude: 32.0823, Longitude: 34.7789},
				DistanceMeters:  1500,
				DurationSeconds: 180,
				Type:            domain.SegmentStartToEnd,
			},
		},
		TotalDistanceMeters:  1500,
		TotalDurationSeconds: 180,
		Summary: domain.RouteSummary{
			TotalSegments: 1,
			ByType: map[domain.SegmentType]domain.TypeBreakdown{
				domain.SegmentStartToEnd: {Count: 1, DistanceMeters: 1500, DurationSeconds: 180},
			},
		},
		ComputedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Status:     status,
	}
}

func computeBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	req := dto.ComputeRequest{
		DayID:   "day-1",
		Start:   dto.Point{Lat: 32.0853, Lng: 34.7818},
		End:     dto.Point{Lat: 32.0823, Lng: 34.7789},
		Profile: "car",
	}
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(req))
	return buf
}

func TestComputeEndpointReturnsDraft(t *testing.T) {
	engine := &stubEngine{
		computeFn: func(ctx context.Context, req domain.RouteRequest) (*domain.RouteVersion, error) {
			assert.Equal(t, "day-1", req.DayID)
			assert.Equal(t, domain.ProfileCar, req.Profile)
			return sampleVersion(domain.StatusDraft), nil
		},
	}
	srv := httptest.NewServer(NewRouter(engine))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/routes/compute", "application/json", computeBody(t))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))

	var got dto.RouteVersion
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, "draft", got.Status)
	require.Len(t, got.Segments, 1)
	require.NotNil(t, got.Segments[0].DistanceKM)
	assert.InDelta(t, 1.5, *got.Segments[0].DistanceKM, 1e-9)
	assert.InDelta(t, 3.0, got.TotalMin, 1e-9)
}

// The id minted (or accepted) by the middleware must reach handler contexts,
// where the timing helper reads it for log correlation.
func TestRequestIDReachesHandlerContext(t *testing.T) {
	engine := &stubEngine{
		computeFn: func(ctx context.Context, req domain.RouteRequest) (*domain.RouteVersion, error) {
			reqID, _ := ctx.Value(obs.RequestIDKey).(string)
			assert.Equal(t, "req-42", reqID)
			return sampleVersion(domain.StatusDraft), nil
		},
	}
	srv := httptest.NewServer(NewRouter(engine))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/routes/compute", computeBody(t))
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "req-42")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "req-42", res.Header.Get("X-Request-Id"))
}

func TestComputeEndpointMapsTypedErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &domain.ValidationError{Field: "latitude", Reason: "must be within [-90, 90]"}, http.StatusBadRequest},
		{"out of bounds", &domain.OutOfBoundsError{Reason: "no backend covers this point"}, http.StatusUnprocessableEntity},
		{"infeasible", &domain.OptimizationInfeasibleError{Reason: "too many stops"}, http.StatusUnprocessableEntity},
		{"unavailable", &domain.ProviderUnavailableError{Provider: "osrm"}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &stubEngine{
				computeFn: func(context.Context, domain.RouteRequest) (*domain.RouteVersion, error) {
					return nil, tc.err
				},
			}
			srv := httptest.NewServer(NewRouter(engine))
			defer srv.Close()

			res, err := http.Post(srv.URL+"/routes/compute", "application/json", computeBody(t))
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
		})
	}
}

func TestComputeEndpointRateLimitSetsRetryAfter(t *testing.T) {
	engine := &stubEngine{
		computeFn: func(context.Context, domain.RouteRequest) (*domain.RouteVersion, error) {
			return nil, &domain.ProviderRateLimitedError{Provider: "google", RetryAfter: 30 * time.Second}
		},
	}
	srv := httptest.NewServer(NewRouter(engine))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/routes/compute", "application/json", computeBody(t))
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "30", res.Header.Get("Retry-After"))
}

func TestComputeEndpointRejectsUnknownFields(t *testing.T) {
	engine := &stubEngine{}
	srv := httptest.NewServer(NewRouter(engine))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/routes/compute", "application/json",
		strings.NewReader(`{"day_id":"day-1","bogus":true}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCommitEndpointConflict(t *testing.T) {
	engine := &stubEngine{
		commitFn: func(ctx context.Context, draft *domain.RouteVersion) (*domain.RouteVersion, error) {
			assert.Equal(t, "day-1", draft.DayID)
			assert.Equal(t, 1500, draft.TotalDistanceMeters)
			return nil, &domain.VersionConflictError{DayID: draft.DayID, Expected: "tok-1", Actual: "tok-2"}
		},
	}
	srv := httptest.NewServer(NewRouter(engine))
	defer srv.Close()

	body := dto.CommitRequest{Version: dto.FromDomainVersion(sampleVersion(domain.StatusDraft))}
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(body))

	res, err := http.Post(srv.URL+"/routes/commit", "application/json", buf)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestActiveEndpointNotFound(t *testing.T) {
	engine := &stubEngine{
		committedFn: func(ctx context.Context, dayID string) (*domain.RouteVersion, error) {
			return nil, nil
		},
	}
	srv := httptest.NewServer(NewRouter(engine))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/days/day-1/route")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHistoryEndpoint(t *testing.T) {
	engine := &stubEngine{
		historyFn: func(ctx context.Context, dayID string) ([]*domain.RouteVersion, error) {
			assert.Equal(t, "day-1", dayID)
			return []*domain.RouteVersion{
				sampleVersion(domain.StatusCommitted),
				sampleVersion(domain.StatusSuperseded),
			}, nil
		},
	}
	srv := httptest.NewServer(NewRouter(engine))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/days/day-1/route/versions")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got dto.HistoryResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	require.Len(t, got.Versions, 2)
	assert.Equal(t, "committed", got.Versions[0].Status)
	assert.Equal(t, "superseded", got.Versions[1].Status)
}
