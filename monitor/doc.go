// Package monitor multiplexes backend command-monitoring streams to many consumers.
//
// A monitoring stream (Redis MONITOR) is a single-subscriber resource: each shard can only
// feed one connection that has been switched into monitor mode. The Observer in this package
// owns exactly one such stream per shard of a logical backend and fans every event out to all
// currently subscribed consumers, tagging each event with the shard that produced it.
//
// # Architecture
//
// The package follows the "accept interfaces, return structs" pattern:
//   - Consumer: an attached client (a websocket session, a log writer, a test recorder)
//   - ShardStream: one live monitor-mode connection, with explicit listener tokens
//   - Backend / Node: a resolved standalone node or cluster topology
//   - Prober / StreamOpener: the backend-specific halves of establishing a stream
//   - ShardConnector: fan-out/fan-in construction of every shard stream
//   - Observer: the multiplexer and its status state machine
//   - Factory: creates Observers sharing one connector and one set of instrumentation
//
// The Redis implementation of Backend, Prober and StreamOpener lives in package redisbackend.
// Nothing in this package imports a Redis client, so tests drive it with in-memory streams.
//
// # Lifecycle
//
//	Empty --Init--> Initializing --handle--> Connected --connect--> Ready --Clear--> Ended
//	                     |                        |
//	                     +--------> Error <-------+
//
// Error and Ended are re-enterable through Init. Subscribe establishes the shard streams on
// its own when the Observer is not Ready. Status.Reinitializable reports whether calling Init
// is safe, that is whether no live consumer would be dropped by it.
//
// # Direct Usage (Without FX)
//
//	import (
//	    "github.com/aalemi-dev/redis-profiler/monitor"
//	    "github.com/aalemi-dev/redis-profiler/redisbackend"
//	)
//
//	cfg := redisbackend.Config{Addrs: []string{"localhost:6379"}}
//	connector := monitor.NewShardConnector(redisbackend.NewProber(cfg), redisbackend.NewOpener(cfg))
//	observer := monitor.NewObserver(monitor.Config{Name: "cache-eu"}, connector)
//
//	if err := observer.Init(ctx, redisbackend.NewAcquireFunc(cfg, nil)); err != nil {
//	    if monitor.IsUnauthorized(err) {
//	        // the user lacks the MONITOR permission
//	    }
//	    return err
//	}
//	if err := observer.Subscribe(ctx, consumer); err != nil {
//	    return err
//	}
//	defer observer.Disconnect(consumer.ID())
//
// # Implementing a Consumer
//
// A Consumer receives events synchronously from the goroutine of the shard that produced
// them. Implementations should hand events off quickly:
//
//	type logConsumer struct {
//	    id  string
//	    log *zap.Logger
//	}
//
//	func (c *logConsumer) ID() string { return c.id }
//
//	func (c *logConsumer) OnData(ev monitor.Event) {
//	    c.log.Info("command", zap.Strings("args", ev.Args), zap.String("shard", ev.Shard.Addr))
//	}
//
//	// OnDisconnect is called once when a shard stream of the Observer ended.
//	func (c *logConsumer) OnDisconnect() {}
//
//	// Destroy is called by Observer.Disconnect; Unsubscribe leaves the consumer alone.
//	func (c *logConsumer) Destroy() {}
//
// Pausing a consumer is Unsubscribe followed by a later Subscribe with the same ID. An event
// a stream was dispatching while Unsubscribe ran may still arrive afterwards; consumers that
// must not see it track their own paused state.
//
// # Implementing a Shard Stream
//
// Backends embed Emitter, which keeps listeners in registration order and hands out the
// ListenerID tokens the Observer uses to remove exactly the listeners a consumer added:
//
//	type stream struct {
//	    monitor.Emitter
//	    shard monitor.ShardDescriptor
//	}
//
//	func (s *stream) Descriptor() monitor.ShardDescriptor { return s.shard }
//	func (s *stream) Disconnect()                          { s.EmitEnd() }
//
// A stream emits data events in arrival order, an error event for a runtime failure and
// exactly one end event when it stops.
//
// # FX Module Integration
//
// FXModule provides the ShardConnector (also as Connector) and the Factory. A Prober and a
// StreamOpener must be provided by a backend module:
//
//	app := fx.New(
//	    logger.FXModule,
//	    redisbackend.FXModule,
//	    monitor.FXModule,
//	    fx.Invoke(func(f *monitor.Factory) {
//	        observer := f.New("cache-eu")
//	        _ = observer
//	    }),
//	)
//
// A Logger, an observability.Observer and a tracer.Tracer are picked up when present.
//
// # Errors
//
// Failures while establishing shard streams are reported as *Error values matching either
// ErrUnauthorized (the backend rejected the MONITOR command) or ErrUnavailable (anything else).
// HTTPStatus maps them to 403 and 503:
//
//	if err := observer.Subscribe(ctx, consumer); err != nil {
//	    http.Error(w, err.Error(), monitor.HTTPStatus(err))
//	    return
//	}
//
// Handle acquisition failures are returned unchanged. Errors raised by a shard after it
// became Ready are logged and observed as "shard_error" only; the shard stays attached until
// it ends.
//
// # Observability
//
// Every operation is reported to the optional observability.Observer with Component
// "monitor": init, connect, probe, open_stream, subscribe, unsubscribe, disconnect, clear,
// shard_error and deliver (one per event and consumer). Spans are opened around Init,
// Subscribe and the construction of every shard when a tracer is attached.
//
// # Thread Safety
//
// Observer state is guarded by a single mutex. Listeners are never invoked while that mutex is
// held, so a consumer callback may call back into the Observer (an end listener calls Clear).
// The end listener of a previous set of streams never clears a newer one, so a consumer that
// is slow to handle OnDisconnect cannot tear down streams opened in the meantime. Events of
// one shard are delivered in order; there is no ordering across shards.
package monitor
