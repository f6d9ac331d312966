// Package console handles all terminal output: colored step markers for the
// CLI and a zerolog writer that renders structured events in the same style.
package console

import (
	"context"

	"github.com/rs/zerolog"
)

type logKey struct{}

// WithLogger attaches the given logger to the context
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}

// Log returns the logger stored in the context. Code paths that run outside
// a command (tests, mostly) get a no-op logger instead of a panic.
func Log(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(logKey{}).(*zerolog.Logger)
	if !ok {
		nop := zerolog.Nop()
		return &nop
	}

	return logger
}
