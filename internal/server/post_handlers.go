package server

import (
	"fbclone/internal/middleware"
	"fbclone/internal/service"

	"github.com/gofiber/fiber/v2"
)

// createPostRequest is accepted as JSON or as multipart form fields next to an "image" part.
type createPostRequest struct {
	Text     string  `json:"text" form:"text"`
	Feeling  *string `json:"feeling" form:"feeling"`
	Activity *string `json:"activity" form:"activity"`
	Tagged   []uint  `json:"tagged" form:"tagged"`
}

type updatePostRequest struct {
	Text string `json:"text"`
}

type reactRequest struct {
	Reaction string `json:"reaction"`
}

// GetPosts handles GET /api/posts
// @Summary Feed page
// @Description Newest first. Pass next_cursor back as cursor for the following page.
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 50)"
// @Param cursor query string false "Opaque cursor"
// @Param creatorId query int false "Only posts by this user"
// @Success 200 {object} models.Page[models.Post]
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	creatorID, err := queryID(c, "creatorId")
	if err != nil {
		return nil
	}
	page := pageRequest(c)

	posts, err := s.postService.Posts(c.UserContext(), middleware.CurrentUserID(c), service.ListPostsInput{
		CreatorID: creatorID,
		Limit:     page.Limit,
		Cursor:    page.Cursor,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Post(c.UserContext(), middleware.CurrentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Param request body createPostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.FieldErrorsResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	upload, err := s.formUpload(c)
	if err != nil {
		return respond(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		CreatorID: middleware.CurrentUserID(c),
		Text:      req.Text,
		Feeling:   req.Feeling,
		Activity:  req.Activity,
		Tagged:    req.Tagged,
		Image:     upload,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Edit the text of an own post
// @Description Returns null when the post is missing or owned by someone else
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body updatePostRequest true "New text"
// @Success 200 {object} models.Post
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), middleware.CurrentUserID(c), id, req.Text)
	if err != nil {
		return respond(c, err)
	}
	if post == nil {
		return c.JSON(nil)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete an own post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {boolean} boolean
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ok, err := s.postService.DeletePost(c.UserContext(), middleware.CurrentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(ok)
}

// ReactToPost handles POST /api/posts/:id/react
// @Summary Add, change or toggle off a reaction
// @Tags reactions
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body reactRequest true "Reaction kind"
// @Success 200 {boolean} boolean
// @Failure 400 {object} models.FieldErrorsResponse
// @Security BearerAuth
// @Router /posts/{id}/react [post]
func (s *Server) ReactToPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req reactRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ok, err := s.reactionService.React(c.UserContext(), middleware.CurrentUserID(c), id, req.Reaction)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(ok)
}

// GetMyReaction handles GET /api/posts/:id/reaction
// @Summary The viewer's reaction on a post
// @Tags reactions
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Reaction
// @Security BearerAuth
// @Router /posts/{id}/reaction [get]
func (s *Server) GetMyReaction(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reaction, err := s.reactionService.Reaction(c.UserContext(), middleware.CurrentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	if reaction == nil {
		return c.JSON(nil)
	}
	return c.JSON(reaction)
}

// GetReactionCounts handles GET /api/posts/:id/reactions
// @Summary Reaction tallies of a post by kind
// @Tags reactions
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]int64
// @Router /posts/{id}/reactions [get]
func (s *Server) GetReactionCounts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	counts, err := s.reactionService.ReactionCounts(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(counts)
}

// GetReactions handles GET /api/reactions
// @Summary Every reaction row
// @Tags reactions
// @Produce json
// @Success 200 {array} models.Reaction
// @Security BearerAuth
// @Router /reactions [get]
func (s *Server) GetReactions(c *fiber.Ctx) error {
	reactions, err := s.reactionService.Reactions(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(reactions)
}
