package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

type Conn struct {
	id   string
	conn *websocket.Conn

	sendMu    sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}

	// workspace is only touched by the read loop.
	workspace string
	lang      string
}

func newConn(id string, c *websocket.Conn) *Conn {
	return &Conn{
		id:     id,
		conn:   c,
		closed: make(chan struct{}),
	}
}

func (c *Conn) ID() string {
	return c.id
}

// Send writes one JSON frame. Safe for concurrent use.
func (c *Conn) Send(frame any) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(frame)
}

// Close sends a close frame carrying reason and closes the underlying socket once.
func (c *Conn) Close(reason string) {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
			time.Now().Add(writeWait))
		_ = c.conn.Close()
	})
}

func (c *Conn) Done() <-chan struct{} {
	return c.closed
}
