package profiler

import (
	"errors"
	"net/http"

	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/aalemi-dev/redis-profiler/redisbackend"
)

// Message types.
const (
	// TypeMonitor is sent by a client to start receiving events, and by the server
	// for every batch of events.
	TypeMonitor = "monitor"

	// TypePause is sent by a client to stop receiving events without closing the socket.
	TypePause = "pause"

	// TypeException is sent by the server when streaming failed or ended.
	TypeException = "exception"
)

// Message is a server to client frame.
type Message struct {
	Type  string            `json:"type"`
	Items []Item            `json:"items,omitempty"`
	Error *ExceptionPayload `json:"error,omitempty"`
}

// Request is a client to server frame.
type Request struct {
	Type string `json:"type"`
}

// Item is one command as shown to a profiler client.
type Item struct {
	// Time is the server timestamp as "<seconds>.<microseconds>".
	Time     string       `json:"time"`
	Args     []string     `json:"args"`
	Source   string       `json:"source"`
	Database int          `json:"database"`
	Shard    ShardOptions `json:"shardOptions"`
}

// ShardOptions identifies the node an Item came from.
type ShardOptions struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ExceptionPayload describes a failure to a client.
type ExceptionPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newItem(event monitor.Event) Item {
	return Item{
		Time:     redisbackend.FormatTimestamp(event.Timestamp),
		Args:     event.Args,
		Source:   event.Source,
		Database: event.Database,
		Shard: ShardOptions{
			Host: event.Shard.Host,
			Port: event.Shard.Port,
		},
	}
}

// NewException describes err for a client. Classified monitor errors keep their
// message; anything unexpected is reported generically.
func NewException(err error) *ExceptionPayload {
	status := monitor.HTTPStatus(err)
	msg := http.StatusText(status)

	var classified *monitor.Error
	switch {
	case errors.As(err, &classified):
		msg = classified.Error()
	case status != http.StatusInternalServerError && err != nil:
		msg = err.Error()
	}

	return &ExceptionPayload{
		Status:  status,
		Message: msg,
		Error:   http.StatusText(status),
	}
}

// endedException is sent when the shard streams of an instance end underneath a client.
func endedException() *ExceptionPayload {
	return NewException(monitor.NewUnavailableError(monitor.ShardDescriptor{}, monitor.ErrStreamEnded))
}
