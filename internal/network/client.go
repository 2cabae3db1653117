package network

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Ping period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Outbound queue size per client. When it fills, frames are dropped
	// rather than blocking the hub.
	sendBuffer = 256
)

// Client wraps one websocket connection with its outbound queue. The hub
// owns registration; readLoop and writeLoop own the connection.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	addr string
	send chan []byte
}

// Addr returns the client network address resolved at upgrade time
// (X-Forwarded-For aware).
func (c *Client) Addr() string {
	return c.addr
}

// TrySend queues a frame without blocking. It reports false when the
// client's queue is full or already closed.
func (c *Client) TrySend(data []byte) (delivered bool) {
	defer func() {
		// Send on a closed channel means the client unregistered while
		// the caller held a stale reference; treat it as a drop.
		if recover() != nil {
			delivered = false
		}
	}()
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Network] Unexpected close from %s: %v", c.addr, err)
			}
			break
		}

		msg, err := ParseMessage(data)
		if err != nil {
			// Malformed input is answered, not fatal: the connection
			// stays open.
			c.TrySend(errorFrame("Invalid message format"))
			continue
		}

		c.hub.incoming <- clientMessage{client: c, msg: msg}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the queue: say goodbye properly.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
