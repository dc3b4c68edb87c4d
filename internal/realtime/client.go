package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write an event to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one transport connection. It starts anonymous; identity is
// bound later by a join event through the hub.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closed int32 // atomic, connection torn down

	// sendMu makes queueing on send and closing it mutually
	// exclusive, so a racing SendEvent can never hit a closed channel.
	sendMu     sync.Mutex
	sendClosed bool

	wg sync.WaitGroup
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Client) close() {
	atomic.CompareAndSwapInt32(&c.closed, 0, 1)
}

// closeSendChannel safely closes the send channel. Called by the hub on
// unregister, or by SendEvent when the buffer overflows.
func (c *Client) closeSendChannel() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	c.wg.Add(1)
	defer func() {
		c.wg.Done()
		c.close()
		select {
		case c.hub.unregister <- c:
		case <-time.After(5 * time.Second):
			slog.Warn("timeout sending unregister request", "connID", c.id)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "connID", c.id, "error", err)
			} else {
				slog.Debug("websocket closed", "connID", c.id, "error", err)
			}
			break
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			slog.Warn("malformed event", "connID", c.id, "error", err)
			c.sendError(CodeInvalidMessage, "invalid event format")
			continue
		}
		if err := ev.Validate(); err != nil {
			c.sendError(CodeInvalidMessage, err.Error())
			continue
		}

		ev.Timestamp = time.Now().Unix()
		if ev.ID == "" {
			ev.ID = uuid.New().String()
		}

		select {
		case c.hub.inbound <- &ClientEvent{Client: c, Event: &ev}:
		case <-time.After(5 * time.Second):
			slog.Warn("timeout queueing event for hub", "connID", c.id, "type", ev.Type)
		}
	}
}

func (c *Client) writePump() {
	c.wg.Add(1)
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		c.wg.Done()
		ticker.Stop()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				w.Close()
				return
			}

			// Flush any events queued behind this one
			n := len(c.send)
			for i := 0; i < n; i++ {
				queued, ok := <-c.send
				if !ok {
					break
				}
				w.Write([]byte{'\n'})
				w.Write(queued)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			if c.isClosed() {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent queues an event for delivery. A full buffer means the peer
// cannot keep up; the client is cut off rather than blocking the hub.
func (c *Client) SendEvent(ev *Event) error {
	if c.isClosed() {
		return ErrClientDisconnected
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	c.sendMu.Lock()
	if c.sendClosed {
		c.sendMu.Unlock()
		return ErrClientDisconnected
	}
	select {
	case c.send <- data:
		c.sendMu.Unlock()
		return nil
	default:
		c.sendMu.Unlock()
		slog.Warn("send buffer full, closing client", "connID", c.id)
		c.close()
		c.closeSendChannel()
		return ErrClientDisconnected
	}
}

func (c *Client) sendError(code, message string) {
	c.SendEvent(NewErrorEvent(uuid.New().String(), code, message))
}

// ServeWS upgrades an HTTP request and hands the connection to the hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(hub, conn)
	slog.Info("websocket connection established", "connID", client.id)

	select {
	case hub.register <- client:
	case <-time.After(5 * time.Second):
		slog.Error("timeout registering connection", "connID", client.id)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
