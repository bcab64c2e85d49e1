package server

import (
	"errors"
	"path"
	"strings"

	"fbclone/internal/models"
	"fbclone/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ServeMedia handles GET /media/* for the local media backend.
// Keys are never rewritten, so objects are served as immutable.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	key := strings.TrimPrefix(path.Clean("/"+c.Params("*")), "/")
	if key == "" || key == "." {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Media", c.Params("*")))
	}

	obj, err := s.media.Storage().Open(c.UserContext(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Media", key))
		}
		return respond(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/webp")
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.SendStream(obj)
}
