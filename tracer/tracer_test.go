package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func newRecordingTracer(t *testing.T) (*TracerClient, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	client := NewClientWithExporter(Config{ServiceName: "test"}, nil)
	client.provider.RegisterSpanProcessor(recorder)
	t.Cleanup(func() {
		_ = client.Shutdown(context.Background())
	})
	return client, recorder
}

func TestStartSpan(t *testing.T) {
	t.Parallel()

	client, recorder := newRecordingTracer(t)

	ctx, parent := client.StartSpan(context.Background(), "monitor.connect")
	_, child := client.StartSpan(ctx, "monitor.build_shard")
	child.SetAttributes(map[string]interface{}{
		"shard":  "127.0.0.1:6379",
		"ready":  true,
		"count":  3,
		"ratio":  0.5,
		"nodes":  []string{"a", "b"},
		"other":  struct{ X int }{1},
		"status": int64(7),
	})
	child.RecordError(errors.New("NOPERM"))
	child.RecordError(nil)
	child.End()
	parent.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "monitor.build_shard", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Attributes(), 7)
	assert.Len(t, ended[0].Events(), 1)
}

func TestCarrierRoundTrip(t *testing.T) {
	t.Parallel()

	client, _ := newRecordingTracer(t)

	ctx, span := client.StartSpan(context.Background(), "profiler.session")
	defer span.End()

	carrier := client.GetCarrier(ctx)
	require.Contains(t, carrier, "traceparent")

	restored := client.SetCarrierOnContext(context.Background(), carrier)
	_, child := client.StartSpan(restored, "child")
	defer child.End()

	sc := child.(*spanImpl).span.SpanContext()
	assert.Equal(t, span.(*spanImpl).span.SpanContext().TraceID(), sc.TraceID())
}

func TestHeaderCarrier(t *testing.T) {
	t.Parallel()

	carrier := HeaderCarrier(map[string][]string{
		"Traceparent": {"00-abc-def-01", "ignored"},
		"Empty":       {},
	})
	assert.Equal(t, map[string]string{"Traceparent": "00-abc-def-01"}, carrier)
}

func TestSampler(t *testing.T) {
	t.Parallel()

	assert.Equal(t, trace.AlwaysSample().Description(), sampler(0).Description())
	assert.Equal(t, trace.AlwaysSample().Description(), sampler(1.5).Description())
	assert.Equal(t, trace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}

func TestNewClient_NoExport(t *testing.T) {
	client, err := NewClient(Config{ServiceName: "test", AppEnv: "dev"})
	require.NoError(t, err)
	require.NoError(t, client.Shutdown(context.Background()))
}

func TestFXModule(t *testing.T) {
	var client *TracerClient
	var iface Tracer
	app := fxtest.New(t,
		fx.Supply(Config{ServiceName: "test"}),
		FXModule,
		fx.Populate(&client, &iface),
	)
	app.RequireStart()
	assert.Same(t, client, iface)
	app.RequireStop()
}
