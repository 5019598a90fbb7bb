package metrics

import (
	"github.com/aalemi-dev/redis-profiler/observability"
)

// Result label values.
const (
	resultOK    = "ok"
	resultError = "error"
)

// OperationObserver records the operations reported by the monitor and profiler
// packages as Prometheus series:
//
//	operations_total{component, operation, result}
//	operation_duration_seconds{component, operation}
//	deliveries_total{instance}
//	delivery_arguments{instance}
//	consumers{instance}
//	shards{instance}
//
// A delivery is one MONITOR event handed to one consumer, so an event seen by three
// consumers counts three times. Deliveries are counted without timing; they are the hot path.
type OperationObserver struct {
	operations Counter
	durations  Histogram
	deliveries Counter
	arguments  Histogram
	consumers  Gauge
	shards     Gauge
}

// NewOperationObserver registers the profiler series on m.
func NewOperationObserver(m MetricsCollector) *OperationObserver {
	return &OperationObserver{
		operations: m.CreateCounter("operations_total",
			"Completed operations by component, operation and result.",
			[]string{"component", "operation", "result"}),
		durations: m.CreateHistogram("operation_duration_seconds",
			"Duration of timed operations.",
			[]string{"component", "operation"},
			[]float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10}),
		deliveries: m.CreateCounter("deliveries_total",
			"MONITOR events delivered to consumers, once per consumer.",
			[]string{"instance"}),
		arguments: m.CreateHistogram("delivery_arguments",
			"Number of arguments per delivered MONITOR event.",
			[]string{"instance"},
			[]float64{1, 2, 3, 5, 10, 25, 100}),
		consumers: m.CreateGauge("consumers",
			"Consumers subscribed to an instance.",
			[]string{"instance"}),
		shards: m.CreateGauge("shards",
			"Open MONITOR streams per instance.",
			[]string{"instance"}),
	}
}

// ObserveOperation implements observability.Observer.
func (o *OperationObserver) ObserveOperation(ctx observability.OperationContext) {
	if ctx.Operation == "deliver" {
		o.deliveries.WithLabelValues(ctx.Resource).Inc()
		o.arguments.WithLabelValues(ctx.Resource).Observe(float64(ctx.Size))
		return
	}

	result := resultOK
	if ctx.Error != nil {
		result = resultError
	}
	o.operations.WithLabelValues(ctx.Component, ctx.Operation, result).Inc()
	if ctx.Duration > 0 {
		o.durations.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
	}

	if ctx.Component != "monitor" {
		return
	}
	switch ctx.Operation {
	case "connect":
		if ctx.Error == nil {
			o.shards.WithLabelValues(ctx.Resource).Set(float64(ctx.Size))
		}
	case "clear":
		o.shards.WithLabelValues(ctx.Resource).Set(0)
		o.consumers.WithLabelValues(ctx.Resource).Set(0)
	case "subscribe", "unsubscribe", "disconnect":
		if n, ok := ctx.Metadata["consumers"].(int); ok {
			o.consumers.WithLabelValues(ctx.Resource).Set(float64(n))
		}
	}
}

var _ observability.Observer = (*OperationObserver)(nil)
