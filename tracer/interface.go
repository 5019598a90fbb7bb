package tracer

import (
	"context"
)

// Tracer creates spans and moves trace context across process boundaries.
// It is implemented by *TracerClient.
type Tracer interface {
	// StartSpan starts a child span of the span in ctx.
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// GetCarrier serialises the trace context of ctx (W3C traceparent and baggage).
	GetCarrier(ctx context.Context) map[string]string

	// SetCarrierOnContext returns ctx carrying the trace context read from carrier.
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
}

// Span is one unit of traced work.
type Span interface {
	// End completes the span.
	End()

	// SetAttributes records attributes. Values other than string, bool and numbers are
	// recorded with fmt.Sprint.
	SetAttributes(attrs map[string]interface{})

	// RecordError records err and marks the span as failed.
	RecordError(err error)
}
