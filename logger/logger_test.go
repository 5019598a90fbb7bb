package logger

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newObservedLogger creates a LoggerClient backed by an in-memory core.
func newObservedLogger(level zapcore.Level, tracingEnabled bool) (*LoggerClient, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &LoggerClient{
		Zap:            zap.New(core),
		tracingEnabled: tracingEnabled,
	}, logs
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		Debug:     zapcore.DebugLevel,
		Info:      zapcore.InfoLevel,
		Warning:   zapcore.WarnLevel,
		"warn":    zapcore.WarnLevel,
		" ERROR ": zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"", FormatJSON, FormatConsole} {
		l, err := New(Config{Level: Debug, Format: format, ServiceName: "test"})
		require.NoError(t, err)
		require.NotNil(t, l.Zap)
		assert.True(t, l.Zap.Core().Enabled(zapcore.DebugLevel))
	}

	l := NewLoggerClient(Config{Level: Error, EnableTracing: true})
	assert.True(t, l.tracingEnabled)
	assert.False(t, l.Zap.Core().Enabled(zapcore.WarnLevel))
}

func TestConvertToZapFields(t *testing.T) {
	t.Parallel()

	l, _ := newObservedLogger(zapcore.DebugLevel, false)

	assert.Empty(t, l.convertToZapFields(nil))

	fields := l.convertToZapFields(errors.New("oops"),
		map[string]interface{}{"shard": "a:1"},
		map[string]interface{}{"consumers": 2},
	)
	require.Len(t, fields, 3)
	assert.Equal(t, "error", fields[0].Key)
}

func TestLevels(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.DebugLevel, false)
	ctx := context.Background()

	l.Debug("d", nil)
	l.Info("i", nil, map[string]interface{}{"k": "v"})
	l.Warn("w", nil)
	l.Error("e", errors.New("boom"))
	l.DebugWithContext(ctx, "dc", nil)
	l.InfoWithContext(ctx, "ic", nil)
	l.WarnWithContext(ctx, "wc", nil)
	l.ErrorWithContext(ctx, "ec", nil)

	entries := logs.All()
	require.Len(t, entries, 8)
	want := []zapcore.Level{
		zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel,
		zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel,
	}
	for i, entry := range entries {
		assert.Equal(t, want[i], entry.Level, "entry %d", i)
	}
	assert.Equal(t, "v", entries[1].ContextMap()["k"])
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.InfoLevel, false)
	l.Debug("hidden", nil)
	l.DebugWithContext(context.Background(), "hidden", nil)
	assert.Equal(t, 0, logs.Len())
}

func TestNamed(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.InfoLevel, true)
	l.Named("monitor").Info("ready", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "monitor", logs.All()[0].ContextMap()["component"])
}

func TestTracingFields(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	enabled, logs := newObservedLogger(zapcore.InfoLevel, true)
	enabled.InfoWithContext(ctx, "traced", nil)
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])

	disabled, logs := newObservedLogger(zapcore.InfoLevel, false)
	disabled.InfoWithContext(ctx, "untraced", nil)
	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)

	assert.Empty(t, enabled.extractTracingFields(context.Background()))
}

func TestIgnoreSyncError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ignoreSyncError(nil))
	assert.NoError(t, ignoreSyncError(syscall.EINVAL))
	assert.NoError(t, ignoreSyncError(syscall.ENOTTY))
	assert.Error(t, ignoreSyncError(errors.New("disk full")))
}

func TestFXModule(t *testing.T) {
	t.Parallel()

	var client *LoggerClient
	var iface Logger
	app := fxtest.New(t,
		fx.Supply(Config{Level: Info, ServiceName: "test"}),
		FXModule,
		fx.Populate(&client, &iface),
	)
	app.RequireStart()
	assert.NotNil(t, client)
	assert.Same(t, client, iface)
	app.RequireStop()
}
