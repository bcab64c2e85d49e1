package server

import (
	"fbclone/internal/middleware"
	"fbclone/internal/service"

	"github.com/gofiber/fiber/v2"
)

// createStoryRequest is accepted as JSON or as multipart form fields next to an "image" part.
type createStoryRequest struct {
	Text     *string `json:"text" form:"text"`
	Font     *string `json:"font" form:"font"`
	Gradient *string `json:"gradient" form:"gradient"`
	Time     *int    `json:"time" form:"time"`
}

// GetRecentStories handles GET /api/stories/recent
// @Summary Stories from the viewer and friends in the last 72 hours
// @Tags stories
// @Produce json
// @Success 200 {array} models.Story
// @Security BearerAuth
// @Router /stories/recent [get]
func (s *Server) GetRecentStories(c *fiber.Ctx) error {
	stories, err := s.storyService.RecentStories(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(stories)
}

// CreateStory handles POST /api/stories
// @Summary Post a story
// @Tags stories
// @Accept json,mpfd
// @Produce json
// @Param request body createStoryRequest true "Story"
// @Success 201 {object} models.Story
// @Failure 400 {object} models.FieldErrorsResponse
// @Security BearerAuth
// @Router /stories [post]
func (s *Server) CreateStory(c *fiber.Ctx) error {
	var req createStoryRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	upload, err := s.formUpload(c)
	if err != nil {
		return respond(c, err)
	}

	story, err := s.storyService.CreateStory(c.UserContext(), service.CreateStoryInput{
		UserID:   middleware.CurrentUserID(c),
		Text:     req.Text,
		Font:     req.Font,
		Gradient: req.Gradient,
		Time:     req.Time,
		Image:    upload,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}
