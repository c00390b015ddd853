// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/buyside/internal/logging"
)

// quietPaths are logged at debug level.
var quietPaths = map[string]bool{
	"/healthz": true,
}

// Logger writes one structured entry per request through logging.FromContext,
// so entries carry the chi request id. Fields: method, path, query (when
// present), status, bytes, duration_ms and ip (as resolved by TrustedRealIP).
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case quietPaths[r.URL.Path]:
			level = slog.LevelDebug
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, "query", r.URL.RawQuery)
		}
		logging.FromContext(r.Context()).Log(r.Context(), level, "request", attrs...)
	})
}
