// Package observability defines the Observer hook every component of the profiler
// reports its operations to.
//
// # Overview
//
// Components accept an optional Observer and call it once per completed operation
// with an OperationContext. Applications decide what to do with it: record Prometheus
// metrics (see metrics.OperationObserver), log, or both through Multi.
//
// # Usage in Components
//
//	func (c *ShardConnector) build(ctx context.Context, node Node) (ShardStream, error) {
//	    start := time.Now()
//	    err := c.prober.Probe(ctx, node)
//	    c.observeOperation("probe", node.Descriptor().Addr, "", time.Since(start), err, 0, nil)
//	    ...
//	}
//
// # Usage in Applications
//
//	observer := observability.Multi(
//	    metrics.NewOperationObserver(metricsClient),
//	    observability.ObserverFunc(func(op observability.OperationContext) {
//	        if op.Error != nil {
//	            log.ErrorWithContext(context.Background(), op.Operation+" failed", op.Error, nil)
//	        }
//	    }),
//	)
//
// # FX Integration
//
//	fx.Provide(
//	    fx.Annotate(
//	        metrics.NewOperationObserver,
//	        fx.As(new(observability.Observer)),
//	    ),
//	)
//
// # Thread Safety
//
// Observer implementations are called concurrently from shard stream goroutines and
// HTTP handlers and must be safe for concurrent use.
package observability
