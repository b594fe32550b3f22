package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := FromContext(ctx).With()
	logger = addField(logger, key, value)
	l := logger.Logger()
	return WithLogger(ctx, &l)
}

// WithRow tags log lines with a ledger row identifier.
func WithRow(ctx context.Context, row int) context.Context {
	return WithField(ctx, "row", row)
}

// WithTable tags log lines with a catalog table name.
func WithTable(ctx context.Context, table string) context.Context {
	return WithField(ctx, "table", table)
}
