package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"shiprisk/internal/config"
	"shiprisk/internal/errors"
	"shiprisk/internal/infrastructure"
	customMiddleware "shiprisk/internal/middleware"
	"shiprisk/internal/store"
)

// RouterDeps are the collaborators of the report API
type RouterDeps struct {
	Config  config.ServerConfig
	Store   store.Store
	Metrics *infrastructure.Metrics
	Tracer  trace.Tracer
	Logger  *slog.Logger
}

// NewRouter builds the chi router.
// Middleware order: RequestID, Tracing, Logger, Recoverer, RateLimiter.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	if deps.Tracer != nil {
		r.Use(customMiddleware.Tracing(deps.Tracer))
	}
	r.Use(customMiddleware.StructuredLogger(deps.Logger))
	r.Use(customMiddleware.Recoverer(deps.Logger))
	if deps.Config.RateLimitRPS > 0 {
		burst := max(deps.Config.RateLimitBurst, 1)
		r.Use(customMiddleware.NewRateLimiter(deps.Config.RateLimitRPS, burst, deps.Logger).Handler)
	}

	health := NewHealthHandler(deps.Store)
	r.Get("/healthz", health.HealthCheck)

	reports := NewReportHandler(deps.Store, deps.Logger)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/report", reports.GetReport)
		r.Get("/model", reports.GetModel)
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Render(w, r, errors.NewErrorResponse(errors.ErrNotFound))
	})
	return r
}
