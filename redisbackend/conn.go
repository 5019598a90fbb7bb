package redisbackend

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// respError is an error reply of the server. It satisfies redis.Error so TranslateError
// classifies it like a reply read by go-redis.
type respError string

func (e respError) Error() string { return string(e) }

// RedisError marks the value as a server reply.
func (e respError) RedisError() {}

var _ redis.Error = respError("")

// monitorConn is a connection of its own to one node that was switched into monitor mode.
//
// go-redis hands MONITOR output to a channel but never reports that the connection died,
// so the stream reads the socket itself. Every reply on it is a single line: handshake
// replies and monitor lines are simple strings, failures are error replies.
type monitorConn struct {
	conn net.Conn
	rd   *bufio.Reader
}

// dialMonitor connects to the node described by opts, authenticates, names the connection
// and sends MONITOR. keepAlive is the TCP keep-alive period of the socket.
func dialMonitor(ctx context.Context, opts *redis.Options, name string, keepAlive time.Duration) (*monitorConn, error) {
	network := opts.Network
	if network == "" {
		network = "tcp"
	}

	dialer := &net.Dialer{Timeout: opts.DialTimeout, KeepAlive: keepAlive}
	var (
		conn net.Conn
		err  error
	)
	if opts.TLSConfig != nil {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: opts.TLSConfig}).DialContext(ctx, network, opts.Addr)
	} else {
		conn, err = dialer.DialContext(ctx, network, opts.Addr)
	}
	if err != nil {
		return nil, TranslateError(err)
	}

	c := &monitorConn{conn: conn, rd: bufio.NewReader(conn)}
	if err := c.handshake(ctx, opts, name); err != nil {
		_ = conn.Close()
		return nil, TranslateError(err)
	}
	return c, nil
}

func (c *monitorConn) handshake(ctx context.Context, opts *redis.Options, name string) error {
	deadline := time.Now().Add(opts.DialTimeout)
	if opts.ReadTimeout > 0 {
		deadline = deadline.Add(opts.ReadTimeout)
	}
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return err
	}

	if opts.Password != "" {
		args := []string{"AUTH"}
		if opts.Username != "" {
			args = append(args, opts.Username)
		}
		if err := c.command(append(args, opts.Password)...); err != nil {
			return err
		}
	}
	if name != "" {
		if err := c.command("CLIENT", "SETNAME", name); err != nil {
			return err
		}
	}
	if err := c.command("MONITOR"); err != nil {
		return err
	}

	// Monitor output arrives whenever the node executes a command.
	return c.conn.SetDeadline(time.Time{})
}

// command sends args as one request and reads its reply.
func (c *monitorConn) command(args ...string) error {
	if _, err := c.conn.Write(appendCommand(nil, args)); err != nil {
		return err
	}
	_, err := c.readLine()
	return err
}

// readLine reads one simple string reply without its type byte.
func (c *monitorConn) readLine() (string, error) {
	line, err := c.rd.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%w: empty line", ErrProtocol)
	}

	switch line[0] {
	case '+':
		return line[1:], nil
	case '-':
		return "", respError(line[1:])
	default:
		return "", fmt.Errorf("%w: %q", ErrProtocol, line)
	}
}

// Close closes the socket, which unblocks a pending readLine.
func (c *monitorConn) Close() error {
	return c.conn.Close()
}

// appendCommand encodes args as a RESP array of bulk strings.
func appendCommand(b []byte, args []string) []byte {
	b = append(b, '*')
	b = strconv.AppendInt(b, int64(len(args)), 10)
	b = append(b, '\r', '\n')
	for _, arg := range args {
		b = append(b, '$')
		b = strconv.AppendInt(b, int64(len(arg)), 10)
		b = append(b, '\r', '\n')
		b = append(b, arg...)
		b = append(b, '\r', '\n')
	}
	return b
}
