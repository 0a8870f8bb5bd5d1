package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware starts a server span per request and propagates trace context.
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(serviceName)
	propagator := otel.GetTextMapPropagator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract trace context from incoming headers for distributed tracing
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			routePattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				routePattern = rctx.RoutePattern()
			}

			// Create descriptive span name
			spanName := fmt.Sprintf("%s %s", r.Method, routePattern)

			ctx, span := tracer.Start(
				ctx,
				spanName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", routePattern),
					attribute.String("http.request_id", r.Header.Get("X-Request-ID")),
				),
			)
			defer span.End()

			// Wrap response writer to capture status and size
			ww := &enhancedResponseWriter{
				ResponseWriter: w,
				status:         200,
				startTime:      time.Now(),
			}

			// Propagate trace context in response headers
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			// Add trace ID to response for debugging
			if spanCtx := span.SpanContext(); spanCtx.HasTraceID() {
				w.Header().Set("X-Trace-ID", spanCtx.TraceID().String())
			}

			// Continue with traced context
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Calculate request duration
			duration := time.Since(ww.startTime)

			// Record response attributes
			span.SetAttributes(
				attribute.Int("http.status_code", ww.status),
				attribute.Int64("http.response_size", ww.bytesWritten),
				attribute.Float64("http.duration_ms", float64(duration.Milliseconds())),
			)

			// Set span status based on HTTP status
			if ww.status >= 400 {
				span.SetStatus(codes.Error, http.StatusText(ww.status))
				span.RecordError(fmt.Errorf("HTTP %d: %s", ww.status, http.StatusText(ww.status)))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// MetricsMiddleware adds Prometheus metrics to HTTP requests
func MetricsMiddleware(collector *Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if collector == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()

			// Wrap response writer
			ww := &responseWriter{ResponseWriter: w, status: 200}

			// Process request
			next.ServeHTTP(ww, r)

			// Route pattern is only known once chi has matched
			routePattern := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				routePattern = rctx.RoutePattern()
			}

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(ww.status)

			collector.HTTPRequests.WithLabelValues(
				r.Method,
				routePattern,
				status,
			).Inc()

			collector.HTTPDuration.WithLabelValues(
				r.Method,
				routePattern,
			).Observe(duration)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture response status
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// enhancedResponseWriter captures additional response metadata for tracing
type enhancedResponseWriter struct {
	http.ResponseWriter
	status        int
	bytesWritten  int64
	startTime     time.Time
	headerWritten bool
}

func (w *enhancedResponseWriter) WriteHeader(status int) {
	if !w.headerWritten {
		w.status = status
		w.headerWritten = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *enhancedResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}