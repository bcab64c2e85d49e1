package server

import (
	"fbclone/internal/middleware"
	"fbclone/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultUsersLimit = 20

// GetUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultUsersLimit)
	offset := c.QueryInt("offset", 0)

	users, err := s.userService.GetUsers(c.UserContext(), middleware.CurrentUserID(c), limit, offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// SearchUsers handles GET /api/users/search
// @Summary Search users by username prefix
// @Tags users
// @Produce json
// @Param username query string true "Username prefix"
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.SearchUsersByUsername(c.UserContext(), middleware.CurrentUserID(c), c.Query("username"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), middleware.CurrentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// GetFriendCount handles GET /api/users/:id/friend-count
// @Summary Count a user's friends
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{count=int}
// @Router /users/{id}/friend-count [get]
func (s *Server) GetFriendCount(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.friendService.FriendCount(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// UploadUserImage handles PUT /api/users/me/:kind
// @Summary Replace the avatar or banner
// @Tags users
// @Accept mpfd
// @Produce json
// @Param kind path string true "avatar or banner"
// @Param image formData file true "Image file"
// @Success 200 {object} models.User
// @Failure 400 {object} models.FieldErrorsResponse
// @Security BearerAuth
// @Router /users/me/{kind} [put]
func (s *Server) UploadUserImage(c *fiber.Ctx) error {
	kind := models.ImageKind(c.Params("kind"))
	if !kind.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid image kind"))
	}

	upload, err := s.formUpload(c)
	if err != nil {
		return respond(c, err)
	}
	if upload == nil {
		return respond(c, models.NewFieldError(uploadField, "an image is required"))
	}

	user, err := s.userService.UploadImage(c.UserContext(), middleware.CurrentUserID(c), kind, *upload)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}
