package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	loggerKey contextKey = iota
	passIDKey
)

// WithLogger stores logger in ctx. A nil logger stores the process logger.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the process logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// Ctx is FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithPass records passID in ctx and tags its logger with pass_id.
func WithPass(ctx context.Context, passID string) context.Context {
	ctx = context.WithValue(ctx, passIDKey, passID)
	return WithField(ctx, "pass_id", passID)
}

// PassID returns the pass recorded by WithPass, if any.
func PassID(ctx context.Context) string {
	id, _ := ctx.Value(passIDKey).(string)
	return id
}

// WithFields tags the context logger with every entry in fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	lc := FromContext(ctx).With()
	for k, v := range fields {
		lc = addField(lc, k, v)
	}
	logger := lc.Logger()
	return WithLogger(ctx, &logger)
}

// WithField tags the context logger with one field.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithOrder tags the context logger with order_id.
func WithOrder(ctx context.Context, orderID string) context.Context {
	return WithField(ctx, "order_id", orderID)
}

// WithStore tags the context logger with store.
func WithStore(ctx context.Context, store string) context.Context {
	return WithField(ctx, "store", store)
}
