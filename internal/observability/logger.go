// Package observability holds the relay's structured logger. Every log
// line goes to stdout as JSON so the reverse proxy's log shipper can
// pick it up unchanged.
package observability

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey int

const requestIDKey ctxKey = iota

var logger = newLogger()

func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if os.Getenv("VERBO_DEBUG") == "1" {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// Logger returns the process-wide logger.
func Logger() *slog.Logger {
	return logger
}

// WithRequestID stores a request id in the context; the HTTP middleware
// calls this once per request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LoggerFromContext returns the logger tagged with the context's
// request id when one is present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	id := RequestID(ctx)
	if id == "" {
		return logger
	}
	return logger.With("request_id", id)
}
