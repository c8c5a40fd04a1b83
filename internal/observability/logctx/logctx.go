// Package logctx carries a port-level logger through a context so use cases
// can enrich call-scoped entries without threading a logger parameter.
package logctx

import (
	"context"

	"github.com/Zhima-Mochi/stockroom/internal/observability"
)

type ctxKey struct{}

// With returns a context carrying the logger. Nil inputs pass through unchanged.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger carried by the context, or nil when absent.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(ctxKey{}).(observability.Logger)
	return logger
}

// FromOr is From with a fallback for contexts that carry no logger.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	return fallback
}
