package notifications

import (
	"encoding/json"
	"sync"
	"time"

	"fbclone/internal/middleware"
	"fbclone/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Viewers only send keepalives upstream.
	maxMessageSize = 4096

	sendBuffer = 64
)

// EventDropped tells a viewer that live events were lost and the
// notification list should be re-fetched.
const EventDropped = "notifications_dropped"

var dropNotice = []byte(`{"type":"` + EventDropped + `","payload":{"reason":"buffer_full"}}`)

// Client is one viewer connection registered on the Hub. Send is closed by
// the hub, never by the client.
type Client struct {
	UserID uint
	Send   chan []byte

	hub       *Hub
	conn      *websocket.Conn
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
		hub:    hub,
		conn:   conn,
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// Serve pumps queued events to the socket and hands each inbound frame to
// onMessage until either side goes away. It blocks, and unregisters the
// client before returning.
func (c *Client) Serve(onMessage func(*Client, []byte)) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	c.readLoop(onMessage)
	c.hub.UnregisterClient(c)
	<-done
}

func (c *Client) readLoop(onMessage func(*Client, []byte)) {
	defer func() { _ = c.conn.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("notification socket read failed", "user_id", c.UserID, "error", err)
			}
			return
		}
		if onMessage != nil {
			onMessage(c, msg)
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues msg without blocking. When the buffer is full the message
// is dropped and, if there is still room, a drop notice takes its place.
// Sending after the hub closed the client is a counted no-op.
func (c *Client) TrySend(msg []byte) {
	defer func() {
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues("closed").Inc()
		}
	}()

	select {
	case c.Send <- msg:
		return
	default:
	}

	observability.WebSocketBackpressureDrops.WithLabelValues("full").Inc()
	middleware.Logger.Warn("notification buffer full, dropped event", "user_id", c.UserID)
	select {
	case c.Send <- dropNotice:
	default:
	}
}

// SendEvent encodes ev and queues it.
func (c *Client) SendEvent(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.TrySend(data)
	return nil
}
