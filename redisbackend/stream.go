package redisbackend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Opener opens monitor streams on nodes of a Backend.
type Opener struct {
	cfg    Config
	logger Logger
}

// NewOpener creates an Opener. cfg supplies the health check interval, the line buffer size
// and the client name prefix.
func NewOpener(cfg Config) *Opener {
	return &Opener{cfg: cfg.withDefaults()}
}

// WithLogger attaches a logger to the opener and every stream it opens.
func (o *Opener) WithLogger(logger Logger) *Opener {
	o.logger = logger
	return o
}

// Open puts a dedicated connection to node into monitor mode.
func (o *Opener) Open(ctx context.Context, node monitor.Node) (monitor.ShardStream, error) {
	n, err := asNode(node)
	if err != nil {
		return nil, err
	}

	name := o.cfg.ClientNamePrefix + "-monitor-" + uuid.NewString()
	conn, err := dialMonitor(ctx, n.options(), name, o.cfg.HealthCheckInterval)
	if err != nil {
		return nil, err
	}

	s := newStream(n.shard, conn, n.client, o.cfg.StreamBuffer, o.cfg.HealthCheckInterval)
	s.logger = o.logger
	s.start()
	return s, nil
}

// Stream is a monitor.ShardStream on one Redis node.
//
// One goroutine reads the monitor connection, a second parses and dispatches its lines in
// arrival order. When the connection fails or the server closes it, the lines read before
// are dispatched, then the stream emits ErrStreamLost followed by the end signal. A third
// goroutine pings the node on the health check interval and ends the stream the same way
// when the node stops answering. Disconnect ends the stream from our side.
type Stream struct {
	monitor.Emitter

	shard    monitor.ShardDescriptor
	conn     *monitorConn
	health   *redis.Client
	lines    chan string
	done     chan struct{}
	interval time.Duration
	logger   Logger

	// readErr is written by read before it closes lines.
	readErr error

	ended    atomic.Bool
	stopOnce sync.Once
}

func newStream(shard monitor.ShardDescriptor, conn *monitorConn, health *redis.Client, buffer int, interval time.Duration) *Stream {
	return &Stream{
		shard:    shard,
		conn:     conn,
		health:   health,
		lines:    make(chan string, buffer),
		done:     make(chan struct{}),
		interval: interval,
	}
}

func (s *Stream) start() {
	go s.read()
	go s.pump()
	if s.health != nil {
		go s.watch()
	}
}

// Descriptor returns the node the stream is attached to.
func (s *Stream) Descriptor() monitor.ShardDescriptor {
	return s.shard
}

// Disconnect stops monitoring and closes the dedicated connection. Remaining end listeners
// are notified. It is safe to call more than once.
func (s *Stream) Disconnect() {
	s.finish(nil)
}

// Done is closed once the stream was stopped.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

func (s *Stream) read() {
	defer close(s.lines)
	for {
		line, err := s.conn.readLine()
		if err != nil {
			s.readErr = err
			return
		}
		select {
		case s.lines <- line:
		case <-s.done:
			return
		}
	}
}

func (s *Stream) pump() {
	for {
		select {
		case <-s.done:
			return
		case line, ok := <-s.lines:
			if !ok {
				s.finish(fmt.Errorf("%w: %w", ErrStreamLost, TranslateError(s.readErr)))
				return
			}
			if event, ok := ParseMonitorLine(line); ok {
				s.EmitData(event)
			}
		}
	}
}

func (s *Stream) watch() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			err := s.health.Ping(ctx).Err()
			cancel()
			if err != nil {
				s.finish(fmt.Errorf("%w: %w", ErrStreamLost, TranslateError(err)))
				return
			}
		}
	}
}

// finish ends the stream exactly once: it closes the connection, then emits err (if any)
// and the end signal.
func (s *Stream) finish(err error) {
	if !s.ended.CompareAndSwap(false, true) {
		return
	}
	s.stop()

	if err != nil {
		if s.logger != nil {
			s.logger.WarnWithContext(context.Background(), "Monitor stream lost its node", err, map[string]interface{}{
				"shard": s.shard.Addr,
			})
		}
		s.EmitError(err)
	}
	s.EmitEnd()
}

func (s *Stream) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
