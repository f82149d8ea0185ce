package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/AdarBahar/MyTrip-sub001/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeDomainError maps the engine's typed errors onto HTTP statuses. Anything
// outside the taxonomy is a 500 with the detail kept server-side.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation  *domain.ValidationError
		outOfBounds *domain.OutOfBoundsError
		infeasible  *domain.OptimizationInfeasibleError
		conflict    *domain.VersionConflictError
		rateLimited *domain.ProviderRateLimitedError
		unavailable *domain.ProviderUnavailableError
	)

	switch {
	case errors.As(err, &validation):
		writeError(w, r, http.StatusBadRequest, validation.Error())
	case errors.As(err, &outOfBounds):
		writeError(w, r, http.StatusUnprocessableEntity, outOfBounds.Error())
	case errors.As(err, &infeasible):
		writeError(w, r, http.StatusUnprocessableEntity, infeasible.Error())
	case errors.As(err, &conflict):
		writeError(w, r, http.StatusConflict, conflict.Error())
	case errors.As(err, &rateLimited):
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rateLimited.RetryAfter.Seconds())))
		writeError(w, r, http.StatusTooManyRequests, rateLimited.Error())
	case errors.As(err, &unavailable):
		writeError(w, r, http.StatusBadGateway, unavailable.Error())
	default:
		log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
