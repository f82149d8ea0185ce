package api

import (
	"net/http"

	"github.com/AdarBahar/MyTrip-sub001/internal/api/handlers"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers stay unaware of
// concrete providers and stores.
func NewRouter(engine handlers.RouteEngine) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Engine: engine}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("POST /routes/compute", routeHandler.Compute)
	mux.HandleFunc("POST /routes/commit", routeHandler.Commit)
	mux.HandleFunc("GET /days/{day_id}/route", routeHandler.Active)
	mux.HandleFunc("GET /days/{day_id}/route/versions", routeHandler.History)

	return loggingMiddleware(mux)
}
