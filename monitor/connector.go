package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/aalemi-dev/redis-profiler/observability"
	"github.com/aalemi-dev/redis-profiler/tracer"
	"golang.org/x/sync/errgroup"
)

// ShardConnector builds one ShardStream per shard of a backend.
//
// Every node is probed before its stream is opened. Nodes are handled concurrently and the
// connect attempt succeeds only when all of them succeed; on failure every stream that was
// already opened is disconnected again, so no partial shard set survives.
type ShardConnector struct {
	instrumentation

	prober Prober
	opener StreamOpener
}

// NewShardConnector creates a connector from the backend-specific prober and opener.
func NewShardConnector(prober Prober, opener StreamOpener) *ShardConnector {
	return &ShardConnector{prober: prober, opener: opener}
}

// WithLogger attaches a logger used for shard runtime errors and connect diagnostics.
func (c *ShardConnector) WithLogger(logger Logger) *ShardConnector {
	c.logger = logger
	return c
}

// WithObserver attaches an operation observer notified of every probe and stream build.
func (c *ShardConnector) WithObserver(observer observability.Observer) *ShardConnector {
	c.observer = observer
	return c
}

// WithTracer attaches a tracer; each connect and each shard build gets its own span.
func (c *ShardConnector) WithTracer(t tracer.Tracer) *ShardConnector {
	c.tracer = t
	return c
}

// Connect resolves backend into live shard streams.
//
// A standalone backend yields exactly one stream. A cluster yields one stream per node that
// currently reports ready. The returned error is always an *Error: ErrUnauthorized when any
// probe was denied, ErrUnavailable otherwise.
func (c *ShardConnector) Connect(ctx context.Context, backend Backend) ([]ShardStream, error) {
	if backend == nil {
		return nil, NewUnavailableError(ShardDescriptor{}, ErrNotInitialized)
	}

	ctx, endSpan := c.startSpan(ctx, "monitor.connect", map[string]interface{}{
		"backend.cluster": backend.Cluster(),
	})

	nodes, err := c.targets(ctx, backend)
	if err != nil {
		err = classifyConnectError(err)
		endSpan(err)
		return nil, err
	}

	streams := make([]ShardStream, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			stream, err := c.build(gctx, node)
			if err != nil {
				return err
			}
			streams[i] = stream
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, stream := range streams {
			if stream != nil {
				stream.Disconnect()
			}
		}
		err = classifyConnectError(err)
		c.logWarn(ctx, "Failed to establish shard streams", err, map[string]interface{}{
			"shards": len(nodes),
			"kind":   kindOf(err),
		})
		endSpan(err)
		return nil, err
	}

	for _, stream := range streams {
		c.watchErrors(stream)
	}

	c.logDebug(ctx, "Shard streams established", map[string]interface{}{
		"shards": len(streams),
	})
	endSpan(nil)
	return streams, nil
}

// targets selects the nodes to stream from.
func (c *ShardConnector) targets(ctx context.Context, backend Backend) ([]Node, error) {
	nodes, err := backend.Nodes(ctx)
	if err != nil {
		return nil, err
	}

	if !backend.Cluster() {
		if len(nodes) != 1 {
			return nil, NewUnavailableError(ShardDescriptor{}, ErrNoReadyShards)
		}
		return nodes, nil
	}

	ready := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		if node.Ready(ctx) {
			ready = append(ready, node)
		}
	}
	if len(ready) == 0 {
		return nil, NewUnavailableError(ShardDescriptor{}, ErrNoReadyShards)
	}
	return ready, nil
}

// build probes node and, when permitted, opens its stream.
func (c *ShardConnector) build(ctx context.Context, node Node) (ShardStream, error) {
	shard := node.Descriptor()
	ctx, endSpan := c.startSpan(ctx, "monitor.build_shard", map[string]interface{}{
		"shard.addr": shard.Addr,
	})

	start := time.Now()
	err := c.prober.Probe(ctx, node)
	c.observeOperation("probe", shard.Addr, "", time.Since(start), err, 0, nil)
	if err != nil {
		var classified *Error
		if !errors.As(err, &classified) {
			err = NewUnavailableError(shard, err)
		}
		endSpan(err)
		return nil, err
	}

	start = time.Now()
	stream, err := c.opener.Open(ctx, node)
	c.observeOperation("open_stream", shard.Addr, "", time.Since(start), err, 0, nil)
	if err != nil {
		err = NewUnavailableError(shard, err)
		endSpan(err)
		return nil, err
	}

	endSpan(nil)
	return stream, nil
}

// watchErrors attaches the log-only error listener. A failing shard does not change the
// Observer status and does not affect the other shards.
func (c *ShardConnector) watchErrors(stream ShardStream) {
	shard := stream.Descriptor()
	stream.OnError(func(err error) {
		err = errors.Join(ErrShardRuntime, err)
		c.logError(context.Background(), "Error on shard stream", err, map[string]interface{}{
			"shard": shard.Addr,
		})
		c.observeOperation("shard_error", shard.Addr, "", 0, err, 0, nil)
	})
}

func kindOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind.String()
	}
	return "unknown"
}
