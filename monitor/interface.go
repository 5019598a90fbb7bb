package monitor

import (
	"context"
)

// Consumer is one attached client of an Observer.
// The Observer never owns the consumer's transport, only its subscription.
type Consumer interface {
	// ID returns the caller-supplied identifier. It must be unique per Observer.
	ID() string

	// OnData receives every event of every shard while subscribed.
	OnData(event Event)

	// OnDisconnect is called when a shard stream ended underneath the consumer.
	OnDisconnect()

	// Destroy tears down the consumer's own transport.
	Destroy()
}

// ShardStream is a live connection to one backend node that has been switched into
// monitor mode.
//
// Listener registration returns a ListenerID; RemoveListener with that token removes exactly
// that listener and no other. Implementations usually embed Emitter.
type ShardStream interface {
	// Descriptor returns the node this stream is attached to.
	Descriptor() ShardDescriptor

	// OnData registers a listener for monitored commands.
	OnData(fn func(RawEvent)) ListenerID

	// OnEnd registers a listener for the terminal end signal.
	OnEnd(fn func()) ListenerID

	// OnError registers a listener for runtime errors.
	OnError(fn func(error)) ListenerID

	// RemoveListener removes the listener registered under id.
	RemoveListener(id ListenerID) bool

	// RemoveAllListeners removes every listener of one kind.
	RemoveAllListeners(kind EventKind)

	// Disconnect forcibly closes the stream. It must not block on in-flight listener calls.
	Disconnect()
}

// Node is one member of a backend topology.
type Node interface {
	// Descriptor identifies the node.
	Descriptor() ShardDescriptor

	// Ready reports whether the node currently answers requests.
	Ready(ctx context.Context) bool
}

// Backend is the opaque handle an Observer streams from: a standalone node or a cluster.
type Backend interface {
	// Cluster reports whether the backend is a multi-shard topology.
	Cluster() bool

	// Nodes lists the known nodes. A standalone backend returns exactly one.
	Nodes(ctx context.Context) ([]Node, error)
}

// AcquireFunc obtains the backend handle during Init. Its error is returned to the caller
// of Init unchanged.
type AcquireFunc func(ctx context.Context) (Backend, error)

// Prober checks, on a disposable connection, that the monitor command is permitted on a node.
// It returns nil on success and an *Error matching ErrUnauthorized or ErrUnavailable otherwise.
type Prober interface {
	Probe(ctx context.Context, node Node) error
}

// StreamOpener opens the real monitor-mode stream on a node that passed the probe.
type StreamOpener interface {
	Open(ctx context.Context, node Node) (ShardStream, error)
}

// Connector turns a backend into one live ShardStream per shard.
// *ShardConnector is the production implementation.
type Connector interface {
	Connect(ctx context.Context, backend Backend) ([]ShardStream, error)
}
