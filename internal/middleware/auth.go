// Package middleware provides request-scoped identity, logging, tracing and rate limiting for fiber.
package middleware

import (
	"context"
	"errors"
	"strings"

	"fbclone/internal/models"
	"fbclone/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionResolver maps a client token to the user owning the session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (uint, error)
}

// TokenFromRequest reads the session token from the cookie, then a Bearer
// header, then the token query parameter used by websocket clients.
func TokenFromRequest(c *fiber.Ctx, cookieName string) string {
	if v := c.Cookies(cookieName); v != "" {
		return v
	}
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

// resolve binds the viewer to locals and the user context. It reports false for anonymous requests.
func resolve(c *fiber.Ctx, sessions SessionResolver, cookieName string) (bool, error) {
	token := TokenFromRequest(c, cookieName)
	if token == "" {
		return false, nil
	}
	uid, err := sessions.Resolve(c.UserContext(), token)
	if err != nil || uid == 0 {
		return false, err
	}
	c.Locals("userID", uid)
	c.SetUserContext(WithUserID(c.UserContext(), uid))
	return true, nil
}

// AuthRequired rejects requests without a live session before the handler runs.
func AuthRequired(sessions SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := resolve(c, sessions, cookieName)
		if err != nil && !isNoSession(err) {
			Logger.ErrorContext(c.UserContext(), "session lookup failed", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		}
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("not authenticated"))
		}
		return c.Next()
	}
}

// OptionalAuth resolves the viewer when a session is present and never rejects.
func OptionalAuth(sessions SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := resolve(c, sessions, cookieName); err != nil && !isNoSession(err) {
			Logger.WarnContext(c.UserContext(), "session lookup failed", "error", err)
		}
		return c.Next()
	}
}

func isNoSession(err error) bool {
	return errors.Is(err, session.ErrNoSession)
}

// CurrentUserID returns the viewer bound by AuthRequired or OptionalAuth, or 0.
func CurrentUserID(c *fiber.Ctx) uint {
	uid, _ := c.Locals("userID").(uint)
	return uid
}
