package middleware

import (
	"errors"
	"net/http"

	"ideamap-canvas/internal/config"
	"ideamap-canvas/pkg/api"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// errServerFailure marks a 5xx response as a breaker failure
var errServerFailure = errors.New("handler returned a server error")

// CircuitBreaker stops routing requests to next once too many of them end in
// a 5xx, and sheds load with 503 until the breaker half-opens again.
func CircuitBreaker(name string, cfg config.Breaker, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := cb.Execute(func() (any, error) {
				wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
				next.ServeHTTP(wrapper, r)

				if wrapper.statusCode >= http.StatusInternalServerError {
					return nil, errServerFailure
				}
				return nil, nil
			})

			switch {
			case err == nil, errors.Is(err, errServerFailure):
				// next already wrote its response
			case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
				LoggerFor(r, logger).Debug("Circuit breaker rejected request",
					zap.String("breaker", name),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				api.Error(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
			default:
				api.Error(w, http.StatusInternalServerError, "Service error")
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
