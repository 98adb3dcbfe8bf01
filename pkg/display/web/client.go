package web

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a connected browser.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ID          uint8
	remoteAddr  string
	userAgent   string
	connectedAt time.Time

	// smoothed round trip in milliseconds
	avgLatency atomic.Uint32
}

func (c *Client) latency() uint16 {
	return uint16(c.avgLatency.Load())
}

// readPump applies settings sent by the client until the connection
// closes.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return // connection closed
		}
		if len(message) == 0 {
			continue
		}

		switch message[0] {
		case SettingsMessage:
			if len(message) < 3 {
				continue
			}
			c.hub.apply(message[1], message[2])
		case KeepAlive:
		case Closing:
			return
		default:
			c.hub.log.Debugf("web: client %d sent unknown message 0x%02X", c.ID, message[0])
		}
	}
}

// writePump writes queued messages until the hub closes the send
// channel or a write fails.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			select {
			case c.hub.unregister <- c:
			case <-c.hub.done:
			}
			// drain until the hub closes send
			for range c.send {
			}
			return
		}

		if rtt, err := roundTrip(c.conn.UnderlyingConn()); err == nil {
			ms := uint32(rtt / time.Millisecond)
			c.avgLatency.Store((c.avgLatency.Load()*9 + ms) / 10)
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
