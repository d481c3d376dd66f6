package routes

import (
	"net/http"

	"github.com/zatekoja/ridemaps/backend/internal/api/handlers"
	"github.com/zatekoja/ridemaps/backend/internal/api/middleware"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	mapsHandler    *handlers.MapsHandler
	captainHandler *handlers.CaptainHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	mapsHandler *handlers.MapsHandler,
	captainHandler *handlers.CaptainHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		mapsHandler:    mapsHandler,
		captainHandler: captainHandler,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Maps endpoints
	r.mux.HandleFunc("GET /api/maps/coordinates", r.mapsHandler.GetCoordinates)
	r.mux.HandleFunc("GET /api/maps/distance-time", r.mapsHandler.GetDistanceTime)
	r.mux.HandleFunc("GET /api/maps/suggestions", r.mapsHandler.GetSuggestions)

	// Captain endpoints
	r.mux.HandleFunc("GET /api/captains/nearby", r.captainHandler.GetNearbyCaptains)
	r.mux.HandleFunc("PUT /api/captains/{id}/location", r.captainHandler.UpdateLocation)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	// CORS wraps everything so preflight never reaches the handlers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
