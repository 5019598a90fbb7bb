package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aalemi-dev/redis-profiler/observability"
)

// fakeStream is an in-memory ShardStream driven by the test.
type fakeStream struct {
	Emitter
	shard       ShardDescriptor
	disconnects atomic.Int32
}

func newFakeStream(addr string) *fakeStream {
	return &fakeStream{shard: NewShardDescriptor(addr)}
}

func (s *fakeStream) Descriptor() ShardDescriptor { return s.shard }

func (s *fakeStream) Disconnect() { s.disconnects.Add(1) }

func (s *fakeStream) emit(args ...string) {
	s.EmitData(RawEvent{
		Timestamp: time.Unix(1339518083, 107412000),
		Args:      args,
		Source:    "127.0.0.1:60866",
		Database:  0,
	})
}

type fakeNode struct {
	shard ShardDescriptor
	ready bool
}

func newFakeNode(addr string, ready bool) *fakeNode {
	return &fakeNode{shard: NewShardDescriptor(addr), ready: ready}
}

func (n *fakeNode) Descriptor() ShardDescriptor    { return n.shard }
func (n *fakeNode) Ready(ctx context.Context) bool { return n.ready }

type fakeBackend struct {
	cluster bool
	nodes   []Node
	err     error
	closed  atomic.Int32
}

func (b *fakeBackend) Cluster() bool { return b.cluster }

func (b *fakeBackend) Nodes(ctx context.Context) ([]Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.nodes, nil
}

func (b *fakeBackend) Close() error {
	b.closed.Add(1)
	return nil
}

func acquireOK(b Backend) AcquireFunc {
	return func(ctx context.Context) (Backend, error) { return b, nil }
}

// fakeProber fails the probe for the addresses listed in errs.
type fakeProber struct {
	mu     sync.Mutex
	errs   map[string]error
	probed []string
}

func (p *fakeProber) Probe(ctx context.Context, node Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	addr := node.Descriptor().Addr
	p.probed = append(p.probed, addr)
	return p.errs[addr]
}

// fakeOpener returns pre-built streams by address, or a fresh one.
type fakeOpener struct {
	mu      sync.Mutex
	streams map[string]*fakeStream
	errs    map[string]error
	opened  []*fakeStream
}

func (o *fakeOpener) Open(ctx context.Context, node Node) (ShardStream, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	addr := node.Descriptor().Addr
	if err := o.errs[addr]; err != nil {
		return nil, err
	}
	s, ok := o.streams[addr]
	if !ok {
		s = newFakeStream(addr)
	}
	o.opened = append(o.opened, s)
	return s, nil
}

// staticConnector hands out a fixed set of streams, or an error.
type staticConnector struct {
	mu      sync.Mutex
	streams []ShardStream
	err     error
	calls   int
}

func (c *staticConnector) Connect(ctx context.Context, backend Backend) ([]ShardStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.streams, nil
}

func (c *staticConnector) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// recordingConsumer records every callback.
type recordingConsumer struct {
	id string

	mu          sync.Mutex
	events      []Event
	disconnects int
	destroys    int
}

func newConsumer(id string) *recordingConsumer { return &recordingConsumer{id: id} }

func (c *recordingConsumer) ID() string { return c.id }

func (c *recordingConsumer) OnData(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *recordingConsumer) OnDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
}

func (c *recordingConsumer) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroys++
}

func (c *recordingConsumer) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func (c *recordingConsumer) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

func (c *recordingConsumer) Destroys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroys
}

// testObserver records observed operations.
type testObserver struct {
	mu         sync.Mutex
	operations []observability.OperationContext
}

func (t *testObserver) ObserveOperation(ctx observability.OperationContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = append(t.operations, ctx)
}

func (t *testObserver) ByOperation(operation string) []observability.OperationContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []observability.OperationContext
	for _, op := range t.operations {
		if op.Operation == operation {
			out = append(out, op)
		}
	}
	return out
}

var errBoom = errors.New("boom")
