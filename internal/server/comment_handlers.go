package server

import (
	"fbclone/internal/middleware"
	"fbclone/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
// @Summary Comments on a post, newest first
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param limit query int false "Page size (max 50)"
// @Param cursor query string false "Opaque cursor"
// @Success 200 {object} models.Page[models.Comment]
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page, err := s.commentService.PostComments(c.UserContext(), middleware.CurrentUserID(c), postID, pageRequest(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(page)
}

// GetCommentCount handles GET /api/posts/:id/comments/count
// @Summary Number of comments on a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{count=int}
// @Router /posts/{id}/comments/count [get]
func (s *Server) GetCommentCount(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.commentService.CommentCount(c.UserContext(), postID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Description Returns null when the post does not exist
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{text=string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.FieldErrorsResponse
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.CreateCommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.CreatorID = middleware.CurrentUserID(c)
	req.PostID = postID

	comment, err := s.commentService.CreateComment(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	if comment == nil {
		return c.JSON(nil)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
