package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

// RequestIDKey holds the request ID in the request context
const RequestIDKey contextKey = "requestID"

// RequestIDHeader is read from and echoed back on every response
const RequestIDHeader = "X-Request-ID"

// RequestID middleware generates or extracts request ID and adds it to context and response headers
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetRequestIDFromRequest extracts the request ID from the request context
func GetRequestIDFromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}

// LoggerFor returns logger tagged with the request's ID, when it has one
func LoggerFor(r *http.Request, logger *zap.Logger) *zap.Logger {
	if id := GetRequestIDFromRequest(r); id != "" {
		return logger.With(zap.String("request_id", id))
	}
	return logger
}
