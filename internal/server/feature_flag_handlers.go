package server

import (
	"fbclone/internal/middleware"
	"fbclone/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags
// @Tags meta
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}

// requireFlag hides a route behind a feature flag evaluated for the viewer.
func (s *Server) requireFlag(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(name, middleware.CurrentUserID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Route", c.Path()))
		}
		return c.Next()
	}
}
