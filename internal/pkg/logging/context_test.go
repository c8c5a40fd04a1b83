package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextCarriesLogger(t *testing.T) {
	logger := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	require.Same(t, zap.L(), FromContext(context.Background()))
	require.Same(t, zap.L(), FromContext(nil))
}

func TestContextWithNilLoggerIsNoop(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, ctx, ContextWithLogger(ctx, nil))
}

func TestWithTraceNormalisesEmptyIdentifiers(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	WithTrace(zap.New(core), "", "").Info("ping")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "unknown", fields["trace_id"])
	require.Equal(t, "unknown", fields["span_id"])
}
