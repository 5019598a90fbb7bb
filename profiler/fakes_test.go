package profiler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aalemi-dev/redis-profiler/monitor"
)

type fakeTransport struct {
	mu       sync.Mutex
	messages []Message
	closes   int
	err      error
}

func (t *fakeTransport) Send(msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.messages = append(t.messages, msg)
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closes++
	return nil
}

func (t *fakeTransport) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

func (t *fakeTransport) Closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}

type fakeStream struct {
	monitor.Emitter
	shard monitor.ShardDescriptor
}

func (s *fakeStream) Descriptor() monitor.ShardDescriptor { return s.shard }
func (s *fakeStream) Disconnect()                         {}

func (s *fakeStream) emit(args ...string) {
	s.EmitData(monitor.RawEvent{
		Timestamp: time.Unix(1339518083, 107412000),
		Args:      args,
		Source:    "127.0.0.1:60866",
	})
}

// fakeConnector opens one fresh fakeStream per connect.
type fakeConnector struct {
	mu      sync.Mutex
	err     error
	current *fakeStream
	calls   int
}

func (c *fakeConnector) Connect(ctx context.Context, backend monitor.Backend) ([]monitor.ShardStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	c.current = &fakeStream{shard: monitor.NewShardDescriptor("10.0.0.1:6379")}
	return []monitor.ShardStream{c.current}, nil
}

func (c *fakeConnector) Stream() *fakeStream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeConnector) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeConnector) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

type fakeBackend struct{}

func (fakeBackend) Cluster() bool { return false }

func (fakeBackend) Nodes(ctx context.Context) ([]monitor.Node, error) { return nil, nil }

// fakeResolver knows a fixed set of instances and counts acquisitions.
type fakeResolver struct {
	ids      []string
	acquires atomic.Int32
	err      error
}

func (r *fakeResolver) Resolve(id string) (monitor.AcquireFunc, error) {
	for _, known := range r.ids {
		if known == id {
			return func(ctx context.Context) (monitor.Backend, error) {
				r.acquires.Add(1)
				if r.err != nil {
					return nil, r.err
				}
				return fakeBackend{}, nil
			}, nil
		}
	}
	return nil, fmt.Errorf("instance %q: %w", id, monitor.ErrUnknownTarget)
}

func (r *fakeResolver) IDs() []string {
	return append([]string(nil), r.ids...)
}

var errBoom = errors.New("boom")

func testEvent(args ...string) monitor.Event {
	return monitor.Event{
		Timestamp: time.Unix(1339518083, 107412000),
		Args:      args,
		Source:    "127.0.0.1:60866",
		Database:  2,
		Shard:     monitor.NewShardDescriptor("10.0.0.1:6379"),
	}
}

func (r *fakeResolver) resolveErr(id string) error {
	_, err := r.Resolve(id)
	return err
}
