package notifyhub

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

const (
	// WriteTimeout bounds a single websocket write.
	WriteTimeout = 10 * time.Second
	// SendBuffer is how many events a client may fall behind before it is dropped.
	SendBuffer = 256
)

type message struct {
	seq     uint64
	payload []byte
}

type client struct {
	jobID string
	conn  *websocket.Conn
	send  chan message
}

func (c *client) write(payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// writeLoop sends queued events, skipping those already covered by the replay up to seq.
func (c *client) writeLoop(seq uint64) {
	for msg := range c.send {
		if msg.seq != 0 && msg.seq <= seq {
			continue
		}
		if err := c.write(msg.payload); err != nil {
			tool.DefaultLogger.Debugf("[Hub] Failed to write to %s: %v", c.conn.RemoteAddr(), err)
			_ = c.conn.Close()
			return
		}
	}
}

// Hub holds WebSocket connections watching execute windows and forwards job events to them.
// Broadcast never blocks on a connection; clients that fall behind are dropped.
// Implements execute.EventSink.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*client
}

// New creates a new hub.
func New() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]*client),
	}
}

// register adds conn watching jobID. Events are queued until the client's write loop starts.
func (h *Hub) register(conn *websocket.Conn, jobID string) *client {
	c := &client{jobID: jobID, conn: conn, send: make(chan message, SendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = c
	return c
}

// Unregister removes a WebSocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		close(c.send)
	}
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast queues ev as JSON for every connection watching its job.
func (h *Hub) Broadcast(ev types.ExecEvent) {
	payload, err := sonic.Marshal(&ev)
	if err != nil {
		tool.DefaultLogger.Debugf("[Hub] Failed to encode event: %v", err)
		return
	}
	msg := message{seq: ev.Seq, payload: payload}

	var slow []*client
	h.mu.RLock()
	for _, c := range h.conns {
		if c.jobID != "" && c.jobID != ev.JobID {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		tool.DefaultLogger.Warnf("[Hub] Dropping slow client %s", c.conn.RemoteAddr())
		h.Unregister(c.conn)
		_ = c.conn.Close()
	}
}
