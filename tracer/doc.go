// Package tracer wraps the OpenTelemetry SDK behind a small Tracer interface.
//
// # Architecture
//
//   - Tracer interface: StartSpan, GetCarrier and SetCarrierOnContext
//   - Span interface: End, SetAttributes and RecordError
//   - TracerClient: the implementation on an sdk TracerProvider
//   - FXModule: provides *TracerClient and Tracer and shuts the provider down on stop
//
// The monitor package opens spans around Init, Subscribe, shard connects and probes;
// the profiler gateway continues the trace of the incoming websocket upgrade request
// through SetCarrierOnContext:
//
//	ctx := t.SetCarrierOnContext(r.Context(), tracer.HeaderCarrier(r.Header))
//	ctx, span := t.StartSpan(ctx, "profiler.session")
//	defer span.End()
//
// # Configuration
//
//	tc, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "redis-profiler",
//	    AppEnv:       "production",
//	    EnableExport: true,
//	    Endpoint:     "otel-collector:4318",
//	    Insecure:     true,
//	    SampleRatio:  0.1,
//	})
//	if err != nil {
//	    return err
//	}
//	defer tc.Shutdown(context.Background())
//
// Spans are exported over OTLP/HTTP when Config.EnableExport is set. Without it spans are
// still created, so log lines written through the logger package carry trace and span ids.
// SampleRatio applies to root spans; child spans follow their parent's decision.
//
// # Attributes and Errors
//
//	span.SetAttributes(map[string]interface{}{
//	    "monitor.name": "cache-eu",
//	    "shards":       3,
//	})
//	if err != nil {
//	    span.RecordError(err)
//	}
//
// Values of unsupported types are recorded through fmt.Sprint.
//
// # Propagation
//
// GetCarrier and SetCarrierOnContext move the W3C trace context through a
// map[string]string, so it can cross any transport that carries string headers.
//
// # Testing
//
// NewClientWithExporter accepts any sdk SpanExporter, such as tracetest.NewInMemoryExporter.
package tracer
