package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/budget"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/obs"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

type EngineConfig struct {
	Normalizer *Normalizer
	Primary    ports.RouteProvider
	Secondary  ports.RouteProvider
	Budget     budget.Budget
	Policy     FailoverPolicy
	Store      ports.VersionStore
	DayState   ports.DayStateProvider

	MaxUnreachableFraction float64
	// Outer bound on a whole compute request, covering retries, backoff and
	// failover time. Zero means 60s.
	RequestTimeout time.Duration
}

// Engine is the route computation and optimization facade.
//
// Compute is pure: it builds a draft RouteVersion and persists nothing, so
// unlimited concurrent previews for the same day are safe. Commit is the
// only writing operation and is serialized per day by the version store.
type Engine struct {
	normalizer *Normalizer
	matrix     *MatrixBuilder
	segments   *SegmentComputer

	primary   ports.RouteProvider
	secondary ports.RouteProvider
	budget    budget.Budget
	policy    FailoverPolicy

	store    ports.VersionStore
	dayState ports.DayStateProvider

	requestTimeout time.Duration
}

func NewEngine(cfg EngineConfig) *Engine {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Engine{
		normalizer:     cfg.Normalizer,
		matrix:         NewMatrixBuilder(cfg.Normalizer, cfg.MaxUnreachableFraction),
		segments:       NewSegmentComputer(),
		primary:        cfg.Primary,
		secondary:      cfg.Secondary,
		budget:         cfg.Budget,
		policy:         cfg.Policy,
		store:          cfg.Store,
		dayState:       cfg.DayState,
		requestTimeout: timeout,
	}
}

// Compute produces a draft RouteVersion for the request. It may be called
// repeatedly for preview; the draft is disposable until committed.
func (e *Engine) Compute(ctx context.Context, req domain.RouteRequest) (_ *domain.RouteVersion, err error) {
	defer obs.Time(ctx, "engine.Compute")(&err)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	if req.Start, err = e.normalizer.Normalize(req.Start); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if req.End, err = e.normalizer.Normalize(req.End); err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	for i := range req.Stops {
		if req.Stops[i].Point, err = e.normalizer.Normalize(req.Stops[i].Point); err != nil {
			return nil, fmt.Errorf("stops[%d]: %w", i, err)
		}
	}

	// One failover controller per request: its sticky failover state must
	// not leak into other requests.
	provider := NewFailoverProvider(e.primary, e.secondary, e.normalizer.PrimaryCoverage(), e.budget, e.policy)

	sequence := req.Sequence()
	if req.Optimize && len(req.Stops) >= 2 {
		matrix, err := e.matrix.Build(ctx, provider, sequence, req.Profile)
		if err != nil {
			return nil, err
		}

		order, _, err := Optimize(req.FixedMask(), matrix)
		if err != nil {
			return nil, err
		}

		reordered := make([]domain.Point, len(sequence))
		for pos, idx := range order {
			reordered[pos] = sequence[idx]
		}
		sequence = reordered
	}

	segments, summary, totalDistance, totalDuration, err := e.segments.Compute(ctx, provider, sequence, req.Profile, req.Options)
	if err != nil {
		return nil, err
	}

	token := req.BaseToken
	if token == "" && e.dayState != nil {
		if token, err = e.dayState.CurrentToken(ctx, req.DayID); err != nil {
			return nil, fmt.Errorf("compute: read day state token: %w", err)
		}
	}

	return &domain.RouteVersion{
		ID:                   uuid.NewString(),
		DayID:                req.DayID,
		BaseToken:            token,
		Segments:             segments,
		TotalDistanceMeters:  totalDistance,
		TotalDurationSeconds: totalDuration,
		Summary:              summary,
		ComputedAt:           time.Now().UTC(),
		Status:               domain.StatusDraft,
	}, nil
}

// Commit persists the draft as the day's committed version, superseding any
// prior one. The draft's base-state token is re-checked against the day
// collaborator first; a mismatch rejects the commit without side effects.
func (e *Engine) Commit(ctx context.Context, draft *domain.RouteVersion) (_ *domain.RouteVersion, err error) {
	defer obs.Time(ctx, "engine.Commit")(&err)

	if draft == nil {
		return nil, &domain.ValidationError{Field: "draft", Reason: "must be non-nil"}
	}
	if draft.DayID == "" {
		return nil, &domain.ValidationError{Field: "day_id", Reason: "must be non-empty"}
	}
	if draft.Status != domain.StatusDraft {
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("only drafts can be committed, got %q", draft.Status)}
	}

	if e.dayState != nil {
		current, err := e.dayState.CurrentToken(ctx, draft.DayID)
		if err != nil {
			return nil, fmt.Errorf("commit: read day state token: %w", err)
		}
		if current != draft.BaseToken {
			return nil, &domain.VersionConflictError{
				DayID:    draft.DayID,
				Expected: draft.BaseToken,
				Actual:   current,
			}
		}
	}

	active, err := e.store.GetCommitted(ctx, draft.DayID)
	if err != nil {
		return nil, fmt.Errorf("commit: load committed version: %w", err)
	}

	expectedActiveID := ""
	if active != nil {
		expectedActiveID = active.ID
	}

	return e.store.Commit(ctx, draft, expectedActiveID)
}

// Committed returns the day's committed version, nil when none exists.
func (e *Engine) Committed(ctx context.Context, dayID string) (*domain.RouteVersion, error) {
	return e.store.GetCommitted(ctx, dayID)
}

// History returns the day's full version audit trail, newest first.
func (e *Engine) History(ctx context.Context, dayID string) ([]*domain.RouteVersion, error) {
	return e.store.ListVersions(ctx, dayID)
}
