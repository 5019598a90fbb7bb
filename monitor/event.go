package monitor

import (
	"net"
	"strconv"
	"time"
)

// ShardDescriptor identifies the backend node a shard stream is attached to.
// It is attached to every Event so consumers of a cluster can tell shards apart.
type ShardDescriptor struct {
	// Addr is the dialed address in host:port form.
	Addr string `json:"addr"`

	// Host is the host part of Addr.
	Host string `json:"host"`

	// Port is the port part of Addr, 0 when Addr has none.
	Port int `json:"port"`

	// NodeID is the cluster node id when known.
	NodeID string `json:"nodeId,omitempty"`
}

// NewShardDescriptor builds a descriptor from a host:port address.
func NewShardDescriptor(addr string) ShardDescriptor {
	d := ShardDescriptor{Addr: addr, Host: addr}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return d
	}
	d.Host = host
	if p, err := strconv.Atoi(port); err == nil {
		d.Port = p
	}
	return d
}

func (d ShardDescriptor) String() string {
	return d.Addr
}

// RawEvent is one command reported by a shard stream.
type RawEvent struct {
	// Timestamp is the server time at which the command was executed.
	Timestamp time.Time

	// Args holds the command name followed by its arguments.
	Args []string

	// Source is the client that issued the command: "ip:port", "unix:/path" or "lua".
	Source string

	// Database is the logical database index the command ran against.
	Database int
}

// Event is the value delivered to a Consumer: a RawEvent stamped with its shard of origin.
type Event struct {
	Timestamp time.Time
	Args      []string
	Source    string
	Database  int
	Shard     ShardDescriptor
}

func newEvent(raw RawEvent, shard ShardDescriptor) Event {
	return Event{
		Timestamp: raw.Timestamp,
		Args:      raw.Args,
		Source:    raw.Source,
		Database:  raw.Database,
		Shard:     shard,
	}
}
