package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/strucbot/strucbot/internal/middleware"
)

// RouterConfig carries everything the router needs to wire up routes.
type RouterConfig struct {
	Logger    *slog.Logger
	Auth      *AuthHandler
	Schema    *SchemaHandler
	Health    *HealthHandler
	Metrics   *MetricsHandler
	AuthMW    middleware.AuthConfig
	RateLimit middleware.RateLimitConfig
	CORS      middleware.CORSConfig
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	h := New()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health endpoints (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metricsz", cfg.Metrics.Metricsz)
	}

	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", cfg.Auth.Register)
		r.Post("/auth/login", cfg.Auth.Login)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.AuthMW))

			r.Get("/auth/profile", cfg.Auth.Profile)
			r.Put("/auth/profile", cfg.Auth.UpdateProfile)

			r.With(middleware.RateLimitGenerate(cfg.RateLimit)).
				Post("/generate-schema", cfg.Schema.Generate)

			r.Get("/schemas", cfg.Schema.List)
			r.Delete("/schemas/{id}", cfg.Schema.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
