package monitor

import (
	"context"
	"time"

	"github.com/aalemi-dev/redis-profiler/observability"
	"github.com/aalemi-dev/redis-profiler/tracer"
)

// component is the observability component name of this package.
const component = "monitor"

// instrumentation bundles the optional logger, operation observer and tracer shared by
// the Observer and the ShardConnector. Every hook is a no-op when unset.
type instrumentation struct {
	logger   Logger
	observer observability.Observer
	tracer   tracer.Tracer
}

// observeOperation safely calls the observer if it's not nil.
func (in *instrumentation) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
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
		Metadata:    metadata,
	})
}

// startSpan opens a span when a tracer is configured. The returned end function records err
// on the span when non-nil.
func (in *instrumentation) startSpan(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, func(err error)) {
	if in.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := in.tracer.StartSpan(ctx, name)
	span.SetAttributes(attrs)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
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

func (in *instrumentation) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if in.logger != nil {
		in.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
