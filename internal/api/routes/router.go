package routes

import (
	"net/http"

	"github.com/zatekoja/providermatch/internal/api/handlers"
	"github.com/zatekoja/providermatch/internal/api/middleware"
	"github.com/zatekoja/providermatch/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	matchHandler       *handlers.MatchHandler
	geolocationHandler *handlers.GeolocationHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	matchHandler *handlers.MatchHandler,
	geolocationHandler *handlers.GeolocationHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		matchHandler:       matchHandler,
		geolocationHandler: geolocationHandler,
		allowedOrigins:     allowedOrigins,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.matchHandler.Health)

	// Provider search endpoints
	r.mux.HandleFunc("GET /api/providers/search", r.matchHandler.SearchProviders)
	r.mux.HandleFunc("POST /api/providers/search", r.matchHandler.SearchProviders)
	r.mux.HandleFunc("GET /api/specialties", r.matchHandler.ListSpecialties)

	// Geolocation endpoints
	if r.geolocationHandler != nil {
		r.mux.HandleFunc("GET /api/geocode", r.geolocationHandler.Geocode)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.Compression(handler)

	// CORS wraps everything so preflight never reaches the handlers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
