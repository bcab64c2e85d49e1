package server

import (
	"fbclone/internal/middleware"
	"fbclone/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary User signup
// @Description Register a new account and open a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Signup request"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} models.FieldErrorsResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	s.setSessionCookie(c, res.Token)
	return c.JSON(res)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate by username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} models.FieldErrorsResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.userService.Login(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	s.setSessionCookie(c, res.Token)
	return c.JSON(res)
}

// Logout handles POST /api/auth/logout
// @Summary User logout
// @Description Destroy the current session and clear the cookie
// @Tags auth
// @Produce json
// @Success 200 {boolean} boolean
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	token := middleware.TokenFromRequest(c, s.config.SessionCookie)
	if err := s.userService.Logout(c.UserContext(), token); err != nil {
		return respond(c, err)
	}
	s.clearSessionCookie(c)
	return c.JSON(true)
}

// ForgotPassword handles POST /api/auth/forgot-password
// @Summary Request a password reset
// @Description Always succeeds so callers cannot probe for accounts
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {boolean} boolean
// @Router /auth/forgot-password [post]
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.userService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return respond(c, err)
	}
	return c.JSON(true)
}

// ChangePassword handles POST /api/auth/change-password
// @Summary Complete a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.ChangePasswordInput true "Reset token and new password"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} models.FieldErrorsResponse
// @Router /auth/change-password [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.userService.ChangePassword(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	s.setSessionCookie(c, res.Token)
	return c.JSON(res)
}

// Me handles GET /api/auth/me
// @Summary Logged-in user
// @Description Returns the viewer, or null for anonymous requests
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userService.LoggedUser(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	if user == nil {
		return c.JSON(nil)
	}
	return c.JSON(user)
}
