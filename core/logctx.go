package core

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger returns a context carrying l. The runtime uses this to hand
// each actor body its named logger.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFrom returns the logger carried by ctx, or slog.Default when the
// context has none.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
