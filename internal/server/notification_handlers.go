package server

import (
	"fbclone/internal/middleware"
	"fbclone/internal/service"

	"github.com/gofiber/fiber/v2"
)

type markReadRequest struct {
	IDs []uint `json:"ids"`
}

// GetNotifications handles GET /api/notifications
// @Summary The viewer's notifications, newest first
// @Tags notifications
// @Produce json
// @Param limit query int false "Page size (max 50)"
// @Param cursor query string false "Opaque cursor"
// @Success 200 {object} models.Page[models.Notification]
// @Security BearerAuth
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	page, err := s.notificationService.UserNotifications(c.UserContext(), middleware.CurrentUserID(c), pageRequest(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(page)
}

// GetUnreadNotificationsCount handles GET /api/notifications/unread-count
// @Summary Number of notifications not yet received
// @Tags notifications
// @Produce json
// @Success 200 {object} object{count=int}
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (s *Server) GetUnreadNotificationsCount(c *fiber.Ctx) error {
	n, err := s.notificationService.NewNotificationsCount(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// CreateNotification handles POST /api/notifications
// @Summary Notify a user about the viewer's activity
// @Description false for self-notifications and duplicate post activity
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body service.CreateNotificationInput true "Notification"
// @Success 200 {boolean} boolean
// @Failure 400 {object} models.FieldErrorsResponse
// @Security BearerAuth
// @Router /notifications [post]
func (s *Server) CreateNotification(c *fiber.Ctx) error {
	var req service.CreateNotificationInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ok, err := s.notificationService.CreateNotification(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(ok)
}

// MarkNotificationsRead handles PUT /api/notifications/read
// @Summary Mark notifications as received
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body markReadRequest true "Notification IDs"
// @Success 200 {object} object{updated=int}
// @Security BearerAuth
// @Router /notifications/read [put]
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req markReadRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	n, err := s.notificationService.UpdateNotificationStatus(c.UserContext(), middleware.CurrentUserID(c), req.IDs)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
