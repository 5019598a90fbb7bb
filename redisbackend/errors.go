package redisbackend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Configuration errors.
var (
	// ErrNoAddress is returned when a Config lists no node address.
	ErrNoAddress = errors.New("redis: no address configured")

	// ErrClusterDB is returned when a cluster Config selects a database other than 0.
	ErrClusterDB = errors.New("redis: cluster mode supports database 0 only")

	// ErrUnsupportedNode is returned when a monitor.Node was not created by this package.
	ErrUnsupportedNode = errors.New("redis: node was not created by this backend")
)

// Translated Redis errors.
var (
	// ErrNoPermission is a NOPERM reply: the ACL user may not run the command.
	ErrNoPermission = errors.New("redis: no permission")

	// ErrAuthentication is a WRONGPASS or NOAUTH reply.
	ErrAuthentication = errors.New("redis: authentication failed")

	// ErrConnectionFailed is a network level failure.
	ErrConnectionFailed = errors.New("redis: connection failed")

	// ErrTimeout is a dial or read timeout.
	ErrTimeout = errors.New("redis: timeout")

	// ErrClientClosed is returned when the client was closed underneath an operation.
	ErrClientClosed = errors.New("redis: client closed")

	// ErrProtocol is a reply a monitor connection cannot interpret.
	ErrProtocol = errors.New("redis: unexpected reply")

	// ErrStreamLost is emitted by a Stream whose monitor connection failed or was closed
	// by the server.
	ErrStreamLost = errors.New("redis: monitor connection lost")
)

// Reply prefixes Redis uses for the errors above.
const (
	replyNoPerm    = "NOPERM"
	replyWrongPass = "WRONGPASS"
	replyNoAuth    = "NOAUTH"
)

// TranslateError maps go-redis and network errors onto the sentinels of this package.
// The original error stays reachable through errors.Is / errors.As.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		msg := replyErr.Error()
		switch {
		case strings.HasPrefix(msg, replyNoPerm):
			return fmt.Errorf("%w: %w", ErrNoPermission, err)
		case strings.HasPrefix(msg, replyWrongPass), strings.HasPrefix(msg, replyNoAuth):
			return fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		return err
	}

	if errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClientClosed, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "eof"):
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return err
}

// IsNoPermission returns true if err is a NOPERM denial.
func IsNoPermission(err error) bool {
	return errors.Is(TranslateError(err), ErrNoPermission)
}

// IsConnectionError returns true if err is a network failure or a timeout.
func IsConnectionError(err error) bool {
	err = TranslateError(err)
	return errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrTimeout)
}
