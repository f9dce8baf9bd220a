package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"agrocommunity_backend/internal/logger"

	"github.com/gorilla/websocket"
)

var (
	ErrClientClosed   = errors.New("client connection closed")
	ErrSendBufferFull = errors.New("client send buffer full")
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Client is one websocket connection. Writes go through a buffered channel
// drained by writePump; Emit never blocks.
type Client struct {
	UserID string

	conn       *websocket.Conn
	send       chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	pingPeriod time.Duration
	registry   *PresenceRegistry
}

func newClient(userID string, conn *websocket.Conn, registry *PresenceRegistry, buffer int, pingPeriod time.Duration) *Client {
	return &Client{
		UserID:     userID,
		conn:       conn,
		send:       make(chan []byte, buffer),
		done:       make(chan struct{}),
		pingPeriod: pingPeriod,
		registry:   registry,
	}
}

// Emit queues an event for this client.
func (c *Client) Emit(event string, data any) error {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump only keeps the connection alive and notices disconnects; clients
// do not send events.
func (c *Client) readPump() {
	defer func() {
		c.registry.Release(c.UserID, c)
		c.close()
	}()

	pongWait := c.pingPeriod * 10 / 9
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.RealtimeLog("read", c.UserID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.RealtimeLog("write", c.UserID, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
