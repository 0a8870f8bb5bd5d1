// Package rest exposes the canvas computations as a stateless HTTP service.
package rest

import (
	"net/http"

	"ideamap-canvas/interfaces/http/rest/handlers"
	"ideamap-canvas/internal/infrastructure/observability"
	"ideamap-canvas/internal/middleware"
	"ideamap-canvas/internal/service/snapshot"
	"ideamap-canvas/pkg/api"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	config  handlers.ConfigSource
	logger  *zap.Logger
	metrics *observability.Collector
	tracer  trace.Tracer
}

// NewRouter creates a new router instance. metrics and tracer may be nil.
func NewRouter(source handlers.ConfigSource, logger *zap.Logger, metrics *observability.Collector, tracer trace.Tracer) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		config:  source,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	cfg := rt.config()
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(rt.logger))
	router.Use(requestLogger(rt.logger))
	if cfg.Tracing.Enabled {
		router.Use(observability.TracingMiddleware(cfg.Tracing.ServiceName))
	}
	router.Use(observability.MetricsMiddleware(rt.metrics))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if cfg.Metrics.Enabled && rt.metrics != nil {
		router.Method(http.MethodGet, cfg.Metrics.Path, rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.RequestSize(cfg.Server.MaxRequestSize))
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout, rt.logger))
		r.Use(middleware.CircuitBreaker("canvas-api", cfg.Server.Breaker, rt.logger))

		service := snapshot.NewService(
			snapshot.WithLogger(rt.logger.Named("canvas")),
			snapshot.WithMetrics(rt.metrics),
			snapshot.WithTracer(rt.tracer),
		)
		canvasHandler := handlers.NewCanvasHandler(service, rt.config, rt.logger)
		r.Post("/layout/{kind}", canvasHandler.Layout)
		r.Post("/clusters", canvasHandler.Clusters)
		r.Post("/fit", canvasHandler.Fit)
		r.Post("/center", canvasHandler.Center)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready once a valid configuration is loaded
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if err := rt.config().Validate(); err != nil {
		api.Error(w, http.StatusServiceUnavailable, "configuration invalid")
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestLogger logs one line per request at debug level
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			middleware.LoggerFor(r, logger).Debug("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()))
		})
	}
}
