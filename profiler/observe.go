package profiler

import (
	"context"
	"time"

	"github.com/aalemi-dev/redis-profiler/observability"
	"github.com/aalemi-dev/redis-profiler/tracer"
)

const component = "profiler"

// instrumentation holds the optional hooks shared by the gateway, the manager and the
// clients they create.
type instrumentation struct {
	logger   Logger
	observer observability.Observer
	tracer   tracer.Tracer
}

func (in *instrumentation) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if in.observer == nil {
		return
	}
	in.observer.ObserveOperation(observability.OperationContext{
		Component:   component,
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}

func (in *instrumentation) startSpan(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, func(err error)) {
	if in.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := in.tracer.StartSpan(ctx, name)
	span.SetAttributes(attrs)
	return ctx, func(err error) {
		span.RecordError(err)
		span.End()
	}
}

func (in *instrumentation) logDebug(ctx context.Context, msg string, fields map[string]interface{}) {
	if in.logger != nil {
		in.logger.DebugWithContext(ctx, msg, nil, fields)
	}
}

func (in *instrumentation) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if in.logger != nil {
		in.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (in *instrumentation) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if in.logger != nil {
		in.logger.WarnWithContext(ctx, msg, err, fields)
	}
}
