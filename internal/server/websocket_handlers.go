package server

import (
	"context"
	"encoding/json"
	"strings"

	"fbclone/internal/middleware"
	"fbclone/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventUnreadCount is sent once after connecting so the client can render its badge.
const EventUnreadCount = "unread_count"

// WebsocketUpgrade rejects plain HTTP requests to websocket routes.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebsocketHandler streams the viewer's notifications as they are created.
// @Summary Live notifications
// @Description Upgrades to a websocket carrying {type, payload} events. Send {"type":"ping"} to get a pong.
// @Tags notifications
// @Security BearerAuth
// @Router /ws/notifications [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, errorFrame("unauthorized"))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed", "user_id", uid, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, errorFrame(err.Error()))
			_ = conn.Close()
			return
		}

		ctx := middleware.WithUserID(context.Background(), uid)
		if n, err := s.notificationService.NewNotificationsCount(ctx, uid); err == nil {
			_ = client.SendEvent(notifications.Event{
				Type:    EventUnreadCount,
				Payload: fiber.Map{"count": n},
			})
		} else {
			middleware.Logger.WarnContext(ctx, "unread count for websocket failed", "error", err)
		}

		client.Serve(handleClientMessage)
	})
}

// errorFrame is the last frame sent before closing a rejected connection.
func errorFrame(msg string) []byte {
	b, err := json.Marshal(fiber.Map{"error": msg})
	if err != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return b
}

// handleClientMessage answers keepalive pings. Other client frames are ignored.
func handleClientMessage(c *notifications.Client, message []byte) {
	var in struct {
		Type string `json:"type"`
	}
	text := strings.TrimSpace(string(message))
	if text != "ping" {
		if err := json.Unmarshal(message, &in); err != nil || in.Type != "ping" {
			return
		}
	}
	c.TrySend([]byte(`{"type":"pong"}`))
}
