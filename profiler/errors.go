package profiler

import "errors"

var (
	// ErrTransportClosed is returned by Send after the transport was closed.
	ErrTransportClosed = errors.New("transport closed")

	// ErrUnknownMessage is reported for client frames with an unsupported type.
	ErrUnknownMessage = errors.New("unknown message type")
)
