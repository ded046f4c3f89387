package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnectionClosed is returned by writes after Close.
var ErrConnectionClosed = errors.New("connection closed")

// conn is one client connection as seen by the lifecycle manager. gorilla
// allows a single concurrent writer, so data frames go through mu. Control
// frames use WriteControl, which is safe alongside other writers.
type conn struct {
	ws        *websocket.Conn
	writeWait time.Duration

	mu     sync.Mutex
	closed bool
}

func newConn(ws *websocket.Conn, writeWait time.Duration) *conn {
	return &conn{ws: ws, writeWait: writeWait}
}

// SendOutput writes one output chunk as a binary frame.
func (c *conn) SendOutput(p []byte) error {
	return c.write(websocket.BinaryMessage, p)
}

// SendReady writes the scenario-ready event.
func (c *conn) SendReady() error {
	return c.write(websocket.TextMessage, readyPayload)
}

// Close sends a normal close frame and closes the socket. Safe to call more
// than once.
func (c *conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	deadline := time.Now().Add(c.writeWait)
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.ws.Close()
}

func (c *conn) ping() error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrConnectionClosed
	}
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

func (c *conn) write(messageType int, p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, p)
}
