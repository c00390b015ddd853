// Package logging configures log/slog and carries correlation ids.
//
// Every entry written while serving a request can carry the chi request id
// and the browser session id, so a search, its tag and its summary line up.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const ctxKeySessionID contextKey = "session_id"

// SetupWriter installs the default slog logger writing to w.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// The CLI passes stderr so command output on stdout stays machine-readable.
func SetupWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithSessionID stores the browser session id for log correlation.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, id)
}

// SessionIDFromContext returns the session id stored by WithSessionID, or "".
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeySessionID).(string)
	return id
}

// FromContext returns the default logger with request_id and session_id
// attached when ctx carries them.
//
//	log := logging.FromContext(r.Context())
//	log.Info("search", "term", term)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if ctx == nil {
		return logger
	}

	var attrs []any
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}
	if sid := SessionIDFromContext(ctx); sid != "" {
		attrs = append(attrs, "session_id", sid)
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}

// WithFields is FromContext plus extra fields for a multi-step operation.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
