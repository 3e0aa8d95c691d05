package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bogdang40/DouaInimi/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 16 * 1024
	sendBufferSize = 256
)

// Client is one websocket connection of an authenticated user. A user can
// hold several connections at once; each gets its own Client.
type Client struct {
	conn   *websocket.Conn
	userID uint64
	connID string

	send      chan []byte
	closeOnce sync.Once
	done      chan struct{}

	// onPong fires on every pong from the peer, on the read goroutine. The
	// gateway uses it to keep the presence TTL ahead of the ping interval.
	onPong func()
}

func newClient(conn *websocket.Conn, userID uint64) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		connID: uuid.New().String(),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// trySend queues a frame without blocking. False means the buffer is full
// or the connection is closing.
func (c *Client) trySend(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// sendEvent marshals and queues a server event for this client only.
func (c *Client) sendEvent(event string, data any) {
	frame, err := serverEvent(event, data)
	if err != nil {
		logger.Error("ws marshal failed", "event", event, "error", err)
		return
	}
	c.trySend(frame)
}

func (c *Client) sendError(msg string) {
	c.sendEvent(EvError, ErrorPayload{Message: msg})
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// readPump reads client frames sequentially and hands them to handle. The
// sequential loop is what keeps one sender's messages ordered: the next
// frame is not read until the previous one is fully processed.
func (c *Client) readPump(handle func(*Client, Envelope)) {
	defer c.close()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.onPong != nil {
			c.onPong()
		}
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.userID, "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendError("malformed frame")
			continue
		}
		handle(c, env)
	}
}

// writePump drains the send buffer onto the wire and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
