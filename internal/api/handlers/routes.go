package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/AdarBahar/MyTrip-sub001/internal/api/dto"
	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

// RouteEngine is the slice of the engine the HTTP layer needs. Handlers stay
// testable against a stub without a provider or store behind them.
type RouteEngine interface {
	Compute(ctx context.Context, req domain.RouteRequest) (*domain.RouteVersion, error)
	Commit(ctx context.Context, draft *domain.RouteVersion) (*domain.RouteVersion, error)
	Committed(ctx context.Context, dayID string) (*domain.RouteVersion, error)
	History(ctx context.Context, dayID string) ([]*domain.RouteVersion, error)
}

type RouteHandler struct {
	Engine RouteEngine
}

// Compute produces a disposable draft version for the request. Nothing is
// persisted; clients preview drafts and commit the one they keep.
func (h *RouteHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req dto.ComputeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft, err := h.Engine.Compute(r.Context(), req.ToDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromDomainVersion(draft))
}

// Commit persists a previously computed draft as the day's committed version.
func (h *RouteHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req dto.CommitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	committed, err := h.Engine.Commit(r.Context(), req.Version.ToDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromDomainVersion(committed))
}

// Active returns the day's committed version, 404 when none exists yet.
func (h *RouteHandler) Active(w http.ResponseWriter, r *http.Request) {
	dayID := r.PathValue("day_id")
	if dayID == "" {
		writeError(w, r, http.StatusBadRequest, "day_id is required")
		return
	}

	version, err := h.Engine.Committed(r.Context(), dayID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if version == nil {
		writeError(w, r, http.StatusNotFound, "no committed route for day")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromDomainVersion(version))
}

// History returns the day's version audit trail, newest first.
func (h *RouteHandler) History(w http.ResponseWriter, r *http.Request) {
	dayID := r.PathValue("day_id")
	if dayID == "" {
		writeError(w, r, http.StatusBadRequest, "day_id is required")
		return
	}

	versions, err := h.Engine.History(r.Context(), dayID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.HistoryResponse{Versions: make([]dto.RouteVersion, 0, len(versions))}
	for _, v := range versions {
		res.Versions = append(res.Versions, dto.FromDomainVersion(v))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
