package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"propertyedge/utils"
)

type ctxKey int

const loggerKey ctxKey = iota

// LoggerMiddleware tags each request with a trace id, taken from a valid
// X-Trace-ID header or freshly generated, and logs its outcome.
func LoggerMiddleware(logger *utils.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.New().String()
			}
			w.Header().Set("X-Trace-ID", traceID)

			reqLogger := logger.With("trace_id", traceID)
			ctx := context.WithValue(r.Context(), loggerKey, reqLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("[http] %s %s -> %d (%d bytes, %dms)",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start).Milliseconds())
		})
	}
}

// loggerFrom returns the request logger set by LoggerMiddleware, or
// fallback outside of it.
func loggerFrom(ctx context.Context, fallback *utils.Logger) *utils.Logger {
	if l, ok := ctx.Value(loggerKey).(*utils.Logger); ok {
		return l
	}
	return fallback
}
