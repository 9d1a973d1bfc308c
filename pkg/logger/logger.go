// Package logger provides a structured, levelled logger built on log/slog.
//
// The key extension over plain slog is WithCtx: it returns a logger with the
// request ID already attached, so every log line from a handler is
// automatically correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_code", order.OrderCode)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 order_code=K3X9A2
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/ganzorig/mishil/config"
)

var L *slog.Logger

func init() {
	var handler slog.Handler

	switch config.AppEnv() {
	case "production", "prod":
		// Structured JSON for log aggregators.
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		// Human-readable for dev.
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the per-request logger stored in ctx by the request-log
// middleware, or the base logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// Inject stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the RequestLog middleware — not usually needed in application code.
func Inject(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level using the base logger.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level using the base logger.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level using the base logger.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level using the base logger.
func Error(msg string, args ...any) { L.Error(msg, args...) }
