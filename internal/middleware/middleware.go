package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// WithRequestID tags ctx and a child logger with id, generating one when id
// is empty. Both HTTP requests and bot interactions go through it.
func WithRequestID(ctx context.Context, logger zerolog.Logger, id string) (context.Context, zerolog.Logger, string) {
	if id == "" {
		id = uuid.New().String()
	}
	ctx = context.WithValue(ctx, RequestIDKey, id)
	l := logger.With().Str("request_id", id).Logger()
	return l.WithContext(ctx), l, id
}

// https://github.com/gin-contrib/requestid
func RequestID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx, l, requestID := WithRequestID(r.Context(), logger, r.Header.Get("X-Request-ID"))
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))

			duration := time.Since(start)
			l.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Dur("duration", duration).
				Msg("request completed")
		})
	}
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
