package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
)

const serviceName = "coldcall-crm"

// New returns the process-wide structured logger. Output is JSON on stdout;
// the platform's log shipper handles transport. Local and dev environments
// log at debug, everything else at info.
func New(appEnv string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelFor(appEnv)})
	return slog.New(h).With("service", serviceName)
}

func levelFor(appEnv string) slog.Level {
	switch appEnv {
	case "local", "dev":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

type ctxKey struct{}

// With stores a logger in context.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From gets a logger from context, falling back to slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// ShutdownFlush is a no-op until a buffered handler is introduced. Call sites
// keep it in their shutdown path so adding one later is a one-line change.
func ShutdownFlush(_ context.Context, _ time.Duration) error { return nil }
