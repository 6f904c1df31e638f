package logger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "inventario/internal/core/context"
)

func TestFromContext_AddsTraceAndUser(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := appctx.WithTrace(context.Background(), appctx.NewTraceContext("t-1", "r-1"))
	ctx = appctx.WithUserID(ctx, "u-7")
	ctx = WithLogger(ctx, l)

	Warn(ctx, "numbering fallback", "number", "ORD-2025-XX")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "u-7", fields["user_id"])
	assert.Equal(t, "ORD-2025-XX", fields["number"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.InfoLevel))
}

func TestDefault_ConcurrentWithSetDefault(t *testing.T) {
	prev := defaultLogger.Load()
	t.Cleanup(func() { defaultLogger.Store(prev) })

	installed := []*Logger{NewNop(), NewNop(), NewNop()}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(l *Logger) {
			defer wg.Done()
			SetDefault(l)
		}(installed[i%len(installed)])
		go func() {
			defer wg.Done()
			assert.NotNil(t, Default())
		}()
	}
	wg.Wait()

	tests := []struct {
		name string
		set  *Logger
	}{
		{"first", installed[0]},
		{"replaced", installed[2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetDefault(tt.set)
			assert.Same(t, tt.set, Default())
		})
	}
}

func TestDefault_FallbackWhenUnset(t *testing.T) {
	prev := defaultLogger.Load()
	t.Cleanup(func() { defaultLogger.Store(prev) })

	defaultLogger.Store(nil)
	first := Default()
	require.NotNil(t, first)
	assert.Same(t, first, Default())
}
