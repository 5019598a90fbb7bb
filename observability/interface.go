package observability

import "time"

// Observer receives a notification for every completed operation of the profiler's
// components (monitor, redis backend, gateway) without tying them to a metrics,
// tracing or logging implementation.
//
// Observers are optional. Implementations must be safe for concurrent use.
type Observer interface {
	// ObserveOperation is called when an operation completes.
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component identifies the package that performed the operation.
	// Examples: "monitor", "profiler"
	Component string

	// Operation describes what was done.
	// Examples:
	//   monitor:  "init", "connect", "probe", "open_stream", "subscribe", "unsubscribe",
	//             "disconnect", "clear", "shard_error", "deliver"
	//   profiler: "flush", "session", "exception", "get_observer"
	Operation string

	// Resource identifies the primary resource, usually the instance id or a shard address.
	Resource string

	// SubResource provides additional context, such as the consumer id or the shard address
	// an event came from (optional).
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the error returned by the operation; nil on success.
	Error error

	// Size is the amount of data involved (optional).
	// Examples:
	//   connect: number of shard streams
	//   deliver: number of command arguments
	//   flush:   number of events in the batch
	Size int64

	// Metadata carries operation specific extras (optional).
	// Example: {"consumers": 3}
	Metadata map[string]interface{}
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Multi returns an Observer that forwards every operation to each non-nil observer
// in order.
func Multi(observers ...Observer) Observer {
	kept := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			kept = append(kept, o)
		}
	}
	return multiObserver(kept)
}

type multiObserver []Observer

func (m multiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}
