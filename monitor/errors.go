package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MonitorCommand is the privileged command every shard stream is built on.
const MonitorCommand = "MONITOR"

// Error kinds that can be matched with errors.Is.
var (
	// ErrUnauthorized is returned when the backend denies the monitor command to the
	// configured user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable is returned for every other failure while establishing shard streams.
	ErrUnavailable = errors.New("cannot stream from backend")

	// ErrShardRuntime wraps failures raised by a shard stream after it became Ready.
	ErrShardRuntime = errors.New("shard stream error")

	// ErrNotInitialized is the cause reported when connect runs before a backend was acquired.
	ErrNotInitialized = errors.New("observer has no backend")

	// ErrNoReadyShards is the cause reported when a cluster has no node reporting ready.
	ErrNoReadyShards = errors.New("no ready shards")

	// ErrStreamEnded is the cause reported when the streams were torn down while a
	// subscription was being set up.
	ErrStreamEnded = errors.New("shard streams ended")

	// ErrUnknownTarget is returned by resolvers for a backend target they do not know.
	ErrUnknownTarget = errors.New("unknown backend target")
)

// Kind classifies an *Error.
type Kind int

const (
	// KindUnavailable is a retryable, non user-actionable failure.
	KindUnavailable Kind = iota

	// KindUnauthorized is a permissions denial for the monitor command.
	KindUnauthorized
)

func (k Kind) String() string {
	if k == KindUnauthorized {
		return "unauthorized"
	}
	return "unavailable"
}

// Error is the classified failure of establishing shard streams.
//
// Its message is safe to show to users: an authorization failure names the command and the
// missing permission, a connectivity failure carries a generic text. The underlying cause is
// reachable through Unwrap and Cause but never part of the message.
type Error struct {
	// Kind is the classification.
	Kind Kind

	// Command is the command that was rejected (KindUnauthorized only).
	Command string

	// Shard is the node the failure was observed on, when known.
	Shard ShardDescriptor

	cause error
}

// NewUnauthorizedError classifies cause as a permissions denial of command on shard.
func NewUnauthorizedError(command string, shard ShardDescriptor, cause error) *Error {
	return &Error{Kind: KindUnauthorized, Command: command, Shard: shard, cause: cause}
}

// NewUnavailableError classifies cause as a connectivity failure.
func NewUnavailableError(shard ShardDescriptor, cause error) *Error {
	return &Error{Kind: KindUnavailable, Shard: shard, cause: cause}
}

func (e *Error) Error() string {
	if e.Kind == KindUnauthorized {
		return fmt.Sprintf("NOPERM: this user has no permissions to run the '%s' command",
			strings.ToLower(e.Command))
	}
	return "Could not connect to the database: " + ErrUnavailable.Error()
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindUnauthorized:
		return target == ErrUnauthorized
	default:
		return target == ErrUnavailable
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the underlying cause, for logging.
func (e *Error) Cause() error {
	return e.cause
}

// classifyConnectError makes sure err is an *Error. Anything that is not already classified
// becomes a connectivity failure.
func classifyConnectError(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return NewUnavailableError(ShardDescriptor{}, err)
}

// IsUnauthorized returns true if err is a permissions denial of the monitor command.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUnavailable returns true if err is a connectivity failure while establishing streams.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsRetryableError returns true if retrying the same operation later may succeed.
func IsRetryableError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUnknownTarget),
		errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}

// HTTPStatus maps err to the status code an HTTP boundary should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownTarget):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
