package monitor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/aalemi-dev/redis-profiler/observability"
	"github.com/aalemi-dev/redis-profiler/tracer"
	"golang.org/x/sync/singleflight"
)

// Signal is a lifecycle notification of an Observer.
type Signal string

const (
	// SignalConnect fires once streaming became usable after Init.
	SignalConnect Signal = "connect"

	// SignalConnectError fires with the classified failure when Init did not reach Ready.
	SignalConnectError Signal = "connect_error"
)

// listenerRef is one listener registration a consumer caused on a shard stream.
type listenerRef struct {
	stream ShardStream
	id     ListenerID
}

// Observer multiplexes the shard streams of one backend target to any number of consumers.
//
// All state is guarded by a single mutex. Listeners, consumer callbacks and stream teardown
// always run outside of it.
type Observer struct {
	instrumentation

	cfg          Config
	connector    Connector
	connectGroup singleflight.Group

	mu                sync.Mutex
	status            Status
	backend           Backend
	streams           []ShardStream
	generation        uint64
	consumers         map[string]Consumer
	consumerListeners map[string][]listenerRef
	lifecycle         map[uint64]func(Signal, error)
	nextLifecycleID   uint64
}

// NewObserver creates an Observer in StatusEmpty. connector builds the shard streams
// whenever the Observer needs to (re)connect.
func NewObserver(cfg Config, connector Connector) *Observer {
	return &Observer{
		cfg:               cfg,
		connector:         connector,
		status:            StatusEmpty,
		consumers:         make(map[string]Consumer),
		consumerListeners: make(map[string][]listenerRef),
		lifecycle:         make(map[uint64]func(Signal, error)),
	}
}

// WithLogger attaches a logger to the observer.
func (o *Observer) WithLogger(logger Logger) *Observer {
	o.logger = logger
	return o
}

// WithOperationObserver attaches an operation observer for metrics.
func (o *Observer) WithOperationObserver(observer observability.Observer) *Observer {
	o.observer = observer
	return o
}

// WithTracer attaches a tracer used for spans around Init and Subscribe.
func (o *Observer) WithTracer(t tracer.Tracer) *Observer {
	o.tracer = t
	return o
}

// Name returns the backend target name the Observer was created for.
func (o *Observer) Name() string {
	return o.cfg.Name
}

// Init acquires the backend handle and connects every shard.
//
// A failure of acquire is returned unchanged; a connect failure is an *Error. Either way the
// status becomes StatusError and SignalConnectError fires. Init may be called again after an
// error or after Clear. Streams and consumers left over from a previous life are dropped first.
func (o *Observer) Init(ctx context.Context, acquire AcquireFunc) error {
	start := time.Now()
	ctx, endSpan := o.startSpan(ctx, "monitor.init", map[string]interface{}{
		"monitor.name": o.cfg.Name,
	})

	o.mu.Lock()
	stale := o.clearLocked()
	prev := o.backend
	o.backend = nil
	o.status = StatusInitializing
	o.mu.Unlock()

	o.teardown(stale)
	closeBackend(prev)

	backend, err := acquire(ctx)
	if err != nil {
		o.mu.Lock()
		o.status = StatusError
		o.mu.Unlock()
		o.failInit(ctx, start, err, endSpan)
		return err
	}

	o.mu.Lock()
	prev = o.backend
	o.backend = backend
	o.status = StatusConnected
	o.mu.Unlock()
	closeBackend(prev)

	if err := o.connect(ctx); err != nil {
		o.failInit(ctx, start, err, endSpan)
		return err
	}

	o.observeOperation("init", o.cfg.Name, "", time.Since(start), nil, 0, nil)
	o.logInfo(ctx, "Monitor streams ready", map[string]interface{}{
		"name":   o.cfg.Name,
		"shards": o.ShardCount(),
	})
	endSpan(nil)
	o.emitSignal(SignalConnect, nil)
	return nil
}

func (o *Observer) failInit(ctx context.Context, start time.Time, err error, endSpan func(error)) {
	o.observeOperation("init", o.cfg.Name, "", time.Since(start), err, 0, nil)
	o.logWarn(ctx, "Failed to initialize monitor", err, map[string]interface{}{
		"name": o.cfg.Name,
	})
	endSpan(err)
	o.emitSignal(SignalConnectError, err)
}

// connect builds the shard streams unless the Observer is already Ready.
// Concurrent callers share one attempt.
func (o *Observer) connect(ctx context.Context) error {
	_, err, _ := o.connectGroup.Do("connect", func() (interface{}, error) {
		return nil, o.doConnect(ctx)
	})
	return err
}

func (o *Observer) doConnect(ctx context.Context) error {
	o.mu.Lock()
	if o.status == StatusReady && len(o.streams) > 0 {
		o.mu.Unlock()
		return nil
	}
	backend := o.backend
	o.mu.Unlock()

	start := time.Now()
	if backend == nil {
		err := NewUnavailableError(ShardDescriptor{}, ErrNotInitialized)
		o.setStatus(StatusError)
		o.observeOperation("connect", o.cfg.Name, "", time.Since(start), err, 0, nil)
		return err
	}

	streams, err := o.connector.Connect(ctx, backend)
	if err != nil {
		o.setStatus(StatusError)
		o.observeOperation("connect", o.cfg.Name, "", time.Since(start), err, 0, nil)
		return err
	}

	o.mu.Lock()
	if o.backend != backend {
		// Init replaced the backend while we were connecting.
		o.mu.Unlock()
		for _, stream := range streams {
			stream.Disconnect()
		}
		err := NewUnavailableError(ShardDescriptor{}, ErrStreamEnded)
		o.observeOperation("connect", o.cfg.Name, "", time.Since(start), err, 0, nil)
		return err
	}
	o.streams = streams
	o.generation++
	o.status = StatusReady
	o.mu.Unlock()

	o.observeOperation("connect", o.cfg.Name, "", time.Since(start), nil, int64(len(streams)), nil)
	return nil
}

// Subscribe attaches c to every shard stream, connecting first when the Observer is not Ready.
//
// Subscribing an id that is already attached does nothing. When a shard stream ends, every
// consumer subscribed to it receives OnDisconnect and the Observer is cleared, unless it has
// reconnected to a newer set of streams in the meantime.
func (o *Observer) Subscribe(ctx context.Context, c Consumer) error {
	start := time.Now()
	ctx, endSpan := o.startSpan(ctx, "monitor.subscribe", map[string]interface{}{
		"monitor.name":   o.cfg.Name,
		"monitor.client": c.ID(),
	})

	if o.Status() != StatusReady {
		if err := o.connect(ctx); err != nil {
			o.observeOperation("subscribe", o.cfg.Name, c.ID(), time.Since(start), err, 0, nil)
			endSpan(err)
			return err
		}
	}

	id := c.ID()

	o.mu.Lock()
	if _, ok := o.consumers[id]; ok {
		o.mu.Unlock()
		endSpan(nil)
		return nil
	}
	if o.status != StatusReady || len(o.streams) == 0 {
		o.mu.Unlock()
		err := NewUnavailableError(ShardDescriptor{}, ErrStreamEnded)
		o.observeOperation("subscribe", o.cfg.Name, id, time.Since(start), err, 0, nil)
		endSpan(err)
		return err
	}

	generation := o.generation
	refs := make([]listenerRef, 0, 2*len(o.streams))
	for _, stream := range o.streams {
		shard := stream.Descriptor()
		dataID := stream.OnData(func(raw RawEvent) {
			c.OnData(newEvent(raw, shard))
			o.observeOperation("deliver", o.cfg.Name, shard.Addr, 0, nil, int64(len(raw.Args)), nil)
		})
		endID := stream.OnEnd(func() {
			c.OnDisconnect()
			o.clearGeneration(generation)
		})
		refs = append(refs, listenerRef{stream: stream, id: dataID}, listenerRef{stream: stream, id: endID})
	}
	o.consumers[id] = c
	o.consumerListeners[id] = refs
	consumers := len(o.consumers)
	o.mu.Unlock()

	o.observeOperation("subscribe", o.cfg.Name, id, time.Since(start), nil, 0, map[string]interface{}{
		"consumers": consumers,
	})
	o.logDebug(ctx, "Consumer subscribed", map[string]interface{}{
		"name":      o.cfg.Name,
		"client":    id,
		"consumers": consumers,
	})
	endSpan(nil)
	return nil
}

// Unsubscribe detaches the consumer registered under id without touching its transport.
// Removing the last consumer clears the Observer.
//
// An event a stream is dispatching while Unsubscribe runs may still reach the consumer
// after Unsubscribe returned; consumers that must not see it filter on their own side.
func (o *Observer) Unsubscribe(id string) {
	o.detach(id, false)
}

// Disconnect detaches the consumer registered under id and destroys it.
// Removing the last consumer clears the Observer.
func (o *Observer) Disconnect(id string) {
	o.detach(id, true)
}

func (o *Observer) detach(id string, destroy bool) {
	operation := "unsubscribe"
	if destroy {
		operation = "disconnect"
	}

	o.mu.Lock()
	c, registered := o.consumers[id]
	refs := o.consumerListeners[id]
	delete(o.consumers, id)
	delete(o.consumerListeners, id)

	var streams []ShardStream
	consumers := len(o.consumers)
	cleared := consumers == 0
	if cleared {
		streams = o.clearLocked()
	}
	o.mu.Unlock()

	for _, ref := range refs {
		ref.stream.RemoveListener(ref.id)
	}
	if destroy && registered {
		c.Destroy()
	}
	o.observeOperation(operation, o.cfg.Name, id, 0, nil, 0, map[string]interface{}{
		"registered": registered,
		"consumers":  consumers,
	})

	if cleared {
		o.finishClear(streams)
	}
}

// Clear drops every consumer, removes all data and end listeners of every shard stream and
// disconnects it, and moves the Observer to StatusEnded. It is safe to call at any time, any
// number of times, including from inside a stream listener.
func (o *Observer) Clear() {
	o.mu.Lock()
	streams := o.clearLocked()
	o.mu.Unlock()

	o.finishClear(streams)
}

// clearGeneration clears the Observer if its streams are still the ones connected as
// generation. End listeners of a previous set of streams may run late and must not tear
// down a newer one.
func (o *Observer) clearGeneration(generation uint64) {
	o.mu.Lock()
	if o.generation != generation || len(o.streams) == 0 {
		o.mu.Unlock()
		return
	}
	streams := o.clearLocked()
	o.mu.Unlock()

	o.finishClear(streams)
}

// clearLocked resets the bookkeeping and returns the streams to tear down. o.mu must be held.
func (o *Observer) clearLocked() []ShardStream {
	streams := o.streams
	o.streams = nil
	o.consumers = make(map[string]Consumer)
	o.consumerListeners = make(map[string][]listenerRef)
	o.status = StatusEnded
	return streams
}

func (o *Observer) finishClear(streams []ShardStream) {
	o.teardown(streams)
	o.observeOperation("clear", o.cfg.Name, "", 0, nil, int64(len(streams)), nil)
	if len(streams) > 0 {
		o.logInfo(context.Background(), "Monitor streams closed", map[string]interface{}{
			"name":   o.cfg.Name,
			"shards": len(streams),
		})
	}
}

func (o *Observer) teardown(streams []ShardStream) {
	for _, stream := range streams {
		stream.RemoveAllListeners(EventData)
		stream.RemoveAllListeners(EventEnd)
		stream.Disconnect()
	}
}

// Close clears the Observer and releases the backend handle.
func (o *Observer) Close() error {
	o.Clear()

	o.mu.Lock()
	backend := o.backend
	o.backend = nil
	o.mu.Unlock()

	if closer, ok := backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Status returns the current connection status.
func (o *Observer) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// ConsumerCount returns the number of subscribed consumers.
func (o *Observer) ConsumerCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.consumers)
}

// ShardCount returns the number of live shard streams.
func (o *Observer) ShardCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streams)
}

// ListenerCount returns the number of listener registrations held for the consumer id.
func (o *Observer) ListenerCount(id string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.consumerListeners[id])
}

// AddLifecycleListener registers fn for SignalConnect and SignalConnectError.
// The returned function removes it again.
func (o *Observer) AddLifecycleListener(fn func(Signal, error)) (remove func()) {
	o.mu.Lock()
	o.nextLifecycleID++
	id := o.nextLifecycleID
	o.lifecycle[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.lifecycle, id)
		o.mu.Unlock()
	}
}

func (o *Observer) emitSignal(signal Signal, err error) {
	o.mu.Lock()
	listeners := make([]func(Signal, error), 0, len(o.lifecycle))
	for _, fn := range o.lifecycle {
		listeners = append(listeners, fn)
	}
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(signal, err)
	}
}

func (o *Observer) setStatus(status Status) {
	o.mu.Lock()
	o.status = status
	o.mu.Unlock()
}

func closeBackend(backend Backend) {
	if closer, ok := backend.(io.Closer); ok {
		_ = closer.Close()
	}
}
