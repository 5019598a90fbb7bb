package profiler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport delivers messages to one profiler client.
type Transport interface {
	// Send writes one message. It is never called concurrently by a Client.
	Send(msg Message) error

	// Close releases the transport. Further Sends fail with ErrTransportClosed.
	Close() error
}

// WebsocketTransport sends messages as JSON text frames.
//
// gorilla/websocket allows one concurrent writer; Send and Ping serialise on a mutex
// so the gateway's keepalive can share the connection with the Client.
type WebsocketTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewWebsocketTransport wraps conn. Every write is bounded by writeTimeout.
func NewWebsocketTransport(conn *websocket.Conn, writeTimeout time.Duration) *WebsocketTransport {
	return &WebsocketTransport{conn: conn, writeTimeout: writeTimeout}
}

// Send implements Transport.
func (t *WebsocketTransport) Send(msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return err
	}
	return t.conn.WriteJSON(msg)
}

// Ping writes a websocket ping control frame.
func (t *WebsocketTransport) Ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(t.writeTimeout))
}

// Close sends a normal closure frame, best effort, and closes the connection.
func (t *WebsocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(t.writeTimeout))
	return t.conn.Close()
}
