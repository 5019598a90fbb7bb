package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// instrumentationName names the tracer spans are created with.
const instrumentationName = "github.com/aalemi-dev/redis-profiler"

// TracerClient is the Tracer on an OpenTelemetry SDK tracer provider.
type TracerClient struct {
	provider   *trace.TracerProvider
	propagator propagation.TextMapPropagator
}

// NewClient creates the tracer provider and installs it, with the W3C trace context and
// baggage propagators, as the global otel provider.
func NewClient(cfg Config) (*TracerClient, error) {
	var exporter trace.SpanExporter
	if cfg.EnableExport {
		opts := []otlptracehttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		exporter = exp
	}

	client := NewClientWithExporter(cfg, exporter)
	otel.SetTracerProvider(client.provider)
	otel.SetTextMapPropagator(client.propagator)
	return client, nil
}

// NewClientWithExporter creates a TracerClient batching spans to exporter (none when nil)
// without touching the global otel state.
func NewClientWithExporter(cfg Config, exporter trace.SpanExporter) *TracerClient {
	options := []trace.TracerProviderOption{
		trace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("deployment.environment", cfg.AppEnv),
		)),
		trace.WithSampler(trace.ParentBased(sampler(cfg.SampleRatio))),
	}
	if exporter != nil {
		options = append(options, trace.WithBatcher(exporter))
	}

	return &TracerClient{
		provider: trace.NewTracerProvider(options...),
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
}

func sampler(ratio float64) trace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return trace.AlwaysSample()
	}
	return trace.TraceIDRatioBased(ratio)
}

// Shutdown flushes pending spans and stops the provider.
func (t *TracerClient) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
