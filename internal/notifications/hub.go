package notifications

import (
	"context"
	"errors"
	"sync"

	"fbclone/internal/middleware"
	"fbclone/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// Connection caps, per viewer and process-wide.
const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

var (
	ErrServerFull   = errors.New("server connection limit reached")
	ErrUserConnsMax = errors.New("user connection limit reached")
	ErrHubClosed    = errors.New("notification hub is shut down")
)

// Hub tracks the live notification sockets of this process, keyed by viewer.
// Events arrive through Dispatch, fed by the Redis subscriber, so every API
// instance delivers to the sockets it holds.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[uint]map[*Client]struct{}),
	}
}

// Register adds a socket for userID, enforcing the connection caps.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnsMax
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes client. Calling it twice is a no-op.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; exists {
		delete(m, client)
		h.totalConns--
		observability.WebSocketConnectionsTotal.Dec()
		client.closeSend()
	}
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Broadcast queues message on every socket userID holds.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether userID holds a socket on this instance.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

// ConnectionCount is the number of registered clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// Dispatch routes a pub/sub message to the clients it addresses.
func (h *Hub) Dispatch(channel, payload string) {
	userID, ok := ParseUserChannel(channel)
	if !ok {
		middleware.Logger.Warn("invalid notification channel", "channel", channel)
		return
	}
	h.Broadcast(userID, payload)
}

// StartWiring subscribes the hub to the notifier's channels.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, h.Dispatch)
}

// Shutdown closes every client and rejects further registrations.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	// A closed Send makes the write loop send a close frame, which ends the
	// read loop and Serve.
	for _, userConns := range h.conns {
		for client := range userConns {
			client.closeSend()
			observability.WebSocketConnectionsTotal.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
