package profiler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/clock"

	"github.com/aalemi-dev/redis-profiler/monitor"
)

// Client is the monitor.Consumer of one profiler session. It collects events and sends
// them to its Transport in batches: the first buffered event starts FlushInterval, a
// batch reaching MaxBatchSize is sent at once.
type Client struct {
	instrumentation

	id        string
	instance  string
	transport Transport
	clock     clock.Clock
	interval  time.Duration
	maxBatch  int

	// paused drops events that were already being dispatched when the client paused.
	paused atomic.Bool

	mu     sync.Mutex
	buffer []Item

	// sendMu serialises batch hand-off and Sends so batches leave in order.
	sendMu sync.Mutex

	wake    chan struct{}
	full    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithClock replaces the wall clock driving the flush interval.
func WithClock(clk clock.Clock) ClientOption {
	return func(c *Client) { c.clock = clk }
}

// WithInstance records the instance id the client streams from, for logs and metrics.
func WithInstance(instance string) ClientOption {
	return func(c *Client) { c.instance = instance }
}

func withInstrumentation(in instrumentation) ClientOption {
	return func(c *Client) { c.instrumentation = in }
}

// NewClient creates a Client with id sending to transport and starts its flusher.
// Destroy stops it.
func NewClient(id string, transport Transport, cfg Config, opts ...ClientOption) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		id:        id,
		transport: transport,
		clock:     clock.WallClock,
		interval:  cfg.FlushInterval,
		maxBatch:  cfg.MaxBatchSize,
		wake:      make(chan struct{}, 1),
		full:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.loop()
	return c
}

// ID implements monitor.Consumer.
func (c *Client) ID() string {
	return c.id
}

// OnData implements monitor.Consumer.
func (c *Client) OnData(event monitor.Event) {
	select {
	case <-c.done:
		return
	default:
	}
	if c.paused.Load() {
		return
	}

	c.mu.Lock()
	c.buffer = append(c.buffer, newItem(event))
	n := len(c.buffer)
	c.mu.Unlock()

	if n == 1 {
		signal(c.wake)
	}
	if n >= c.maxBatch {
		signal(c.full)
	}
}

// Pause makes the client drop incoming events until Resume. Events buffered before the
// pause are still sent.
func (c *Client) Pause() {
	c.paused.Store(true)
}

// Resume accepts events again after Pause.
func (c *Client) Resume() {
	c.paused.Store(false)
}

// Paused reports whether the client drops incoming events.
func (c *Client) Paused() bool {
	return c.paused.Load()
}

// OnDisconnect implements monitor.Consumer. Buffered events are sent, followed by an
// exception telling the client the stream ended.
func (c *Client) OnDisconnect() {
	c.flush()
	c.SendException(endedException())
}

// Destroy implements monitor.Consumer: the flusher stops and the transport is closed.
// It is safe to call more than once.
func (c *Client) Destroy() {
	c.once.Do(func() {
		close(c.done)
		<-c.stopped
		if err := c.transport.Close(); err != nil {
			c.logDebug(context.Background(), "Closing profiler transport failed", map[string]interface{}{
				"client": c.id,
				"error":  err.Error(),
			})
		}
	})
}

// SendException sends an exception message to the client.
func (c *Client) SendException(payload *ExceptionPayload) {
	c.sendMu.Lock()
	err := c.transport.Send(Message{Type: TypeException, Error: payload})
	c.sendMu.Unlock()

	c.observeOperation("exception", c.instance, c.id, 0, err, int64(payload.Status))
	if err != nil {
		c.logDebug(context.Background(), "Sending exception failed", map[string]interface{}{
			"client": c.id,
			"status": payload.Status,
			"error":  err.Error(),
		})
	}
}

// Buffered returns the number of events waiting for the next flush.
func (c *Client) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}

func (c *Client) loop() {
	defer close(c.stopped)
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}

		select {
		case <-c.done:
			return
		case <-c.full:
		case <-c.clock.After(c.interval):
		}
		c.flush()
	}
}

func (c *Client) flush() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	// A full signal raised before this hand-off belongs to the batch taken here.
	select {
	case <-c.full:
	default:
	}

	c.mu.Lock()
	batch := c.buffer
	c.buffer = nil
	c.mu.Unlock()
	if len(batch) == 0 {
		return
	}

	start := time.Now()
	err := c.transport.Send(Message{Type: TypeMonitor, Items: batch})
	c.observeOperation("flush", c.instance, c.id, time.Since(start), err, int64(len(batch)))
	if err != nil {
		c.logDebug(context.Background(), "Dropping profiler batch", map[string]interface{}{
			"client": c.id,
			"events": len(batch),
			"error":  err.Error(),
		})
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

var _ monitor.Consumer = (*Client)(nil)
