package monitor

// Status is the connection state of an Observer.
type Status int

const (
	// StatusEmpty is the state of a freshly created Observer.
	StatusEmpty Status = iota

	// StatusInitializing means the backend handle is being acquired.
	StatusInitializing

	// StatusConnected means the backend handle is held but no shard stream is open yet.
	StatusConnected

	// StatusReady means every shard stream is live. Shard streams exist only in this state.
	StatusReady

	// StatusError means the last Init or connect attempt failed.
	StatusError

	// StatusEnded means the Observer was torn down by Clear.
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusInitializing:
		return "initializing"
	case StatusConnected:
		return "connected"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusEnded:
		return "end"
	default:
		return "unknown"
	}
}

// Reinitializable reports whether Init has to run before the Observer can stream again.
func (s Status) Reinitializable() bool {
	return s != StatusConnected && s != StatusReady
}
