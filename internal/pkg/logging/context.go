package logging

import (
	"context"

	"go.uber.org/zap"
)

type loggerCtxKey struct{}

// ContextWithLogger returns a context carrying the given logger. A nil
// logger leaves the context untouched.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext returns the logger carried by the context, or the zap global
// when none was attached.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.L()
	}
	if logger, ok := ctx.Value(loggerCtxKey{}).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.L()
}
