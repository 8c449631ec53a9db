package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/rl1809/car-build/internal/obs"
)

type RouterOptions struct {
	Logger         zerolog.Logger
	Metrics        *obs.HTTPMetrics
	MetricsHandler http.Handler
	Tracing        bool
	AllowedOrigins []string
}

// NewRouter builds the gateway's chi router.
func NewRouter(h *HTTPHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if opts.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: opts.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: opts.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Post("/parts", h.Parts)
		v.Post("/quote", h.Quote)
		v.Post("/purchase", h.Purchase)
	})
	return r
}

// ReadinessCheck reports whether a dependency of an RPC server is reachable.
type ReadinessCheck func(ctx context.Context) error

// NewOpsRouter serves /health and /metrics next to an RPC server.
func NewOpsRouter(service string, metricsHandler http.Handler, checks map[string]ReadinessCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failing := make(map[string]string)
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failing[name] = err.Error()
			}
		}
		if len(failing) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "unhealthy",
				"service": service,
				"checks":  failing,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": service})
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
	return r
}
