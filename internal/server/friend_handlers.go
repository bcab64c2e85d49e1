package server

import (
	"fbclone/internal/middleware"
	"fbclone/internal/models"
	"fbclone/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultFriendsLimit = 10

// GetFriendRequests handles GET /api/friends
// @Summary Friendship edges around a user
// @Description Defaults to the viewer's accepted friends. mutual_friends is set when userId is someone else.
// @Tags friends
// @Produce json
// @Param userId query int false "Whose edges (defaults to the viewer)"
// @Param status query string false "accepted or in-progress"
// @Param limit query int false "Page size (max 50)"
// @Param skip query int false "Rows to skip"
// @Success 200 {object} models.FriendRequestPage
// @Security BearerAuth
// @Router /friends [get]
func (s *Server) GetFriendRequests(c *fiber.Ctx) error {
	userID, err := queryID(c, "userId")
	if err != nil {
		return nil
	}

	page, err := s.friendService.GetUserFriendRequests(c.UserContext(), middleware.CurrentUserID(c), service.FriendRequestsInput{
		UserID: userID,
		Status: models.FriendRequestStatus(c.Query("status")),
		Limit:  c.QueryInt("limit", defaultFriendsLimit),
		Skip:   c.QueryInt("skip", 0),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(page)
}

// GetIncomingFriendRequests handles GET /api/friends/incoming
// @Summary Pending requests sent to the viewer
// @Tags friends
// @Produce json
// @Success 200 {array} models.FriendRequestWithFriend
// @Security BearerAuth
// @Router /friends/incoming [get]
func (s *Server) GetIncomingFriendRequests(c *fiber.Ctx) error {
	items, err := s.friendService.GetInProgressFriendRequests(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(items)
}

// GetSuggestedFriends handles GET /api/friends/suggestions
// @Summary People the viewer may know
// @Description Friends of friends ranked first, then strangers
// @Tags friends
// @Produce json
// @Success 200 {array} models.SuggestedFriend
// @Security BearerAuth
// @Router /friends/suggestions [get]
func (s *Server) GetSuggestedFriends(c *fiber.Ctx) error {
	suggestions, err := s.friendService.GetSuggestedFriends(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(suggestions)
}

// GetFriendTags handles GET /api/friends/tags
// @Summary Friends matching a username prefix, for tagging
// @Tags friends
// @Produce json
// @Param search query string false "Username prefix"
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /friends/tags [get]
func (s *Server) GetFriendTags(c *fiber.Ctx) error {
	users, err := s.friendService.GetSuggestedFriendTags(c.UserContext(), middleware.CurrentUserID(c), c.Query("search"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetFriendRequest handles GET /api/friends/:userId
// @Summary The edge between the viewer and a user
// @Tags friends
// @Produce json
// @Param userId path int true "Other user ID"
// @Success 200 {object} models.FriendRequestLookup
// @Security BearerAuth
// @Router /friends/{userId} [get]
func (s *Server) GetFriendRequest(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	lookup, err := s.friendService.GetFriendRequest(c.UserContext(), middleware.CurrentUserID(c), otherID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(lookup)
}

// GetMutualFriendsCount handles GET /api/friends/:userId/mutual
// @Summary Number of friends shared with a user
// @Tags friends
// @Produce json
// @Param userId path int true "Other user ID"
// @Success 200 {object} object{count=int}
// @Security BearerAuth
// @Router /friends/{userId}/mutual [get]
func (s *Server) GetMutualFriendsCount(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	n, err := s.friendService.GetMutualFriendsCount(c.UserContext(), middleware.CurrentUserID(c), otherID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// SendFriendRequest handles POST /api/friends/:userId
// @Summary Send a friend request
// @Description false when an edge already exists in either direction, for self, or for unknown users
// @Tags friends
// @Produce json
// @Param userId path int true "Receiver ID"
// @Success 200 {boolean} boolean
// @Security BearerAuth
// @Router /friends/{userId} [post]
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	receiverID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	ok, err := s.friendService.CreateFriendRequest(c.UserContext(), middleware.CurrentUserID(c), receiverID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(ok)
}

// AcceptFriendRequest handles PUT /api/friends/:userId/accept
// @Summary Accept a request sent by a user
// @Tags friends
// @Produce json
// @Param userId path int true "Sender ID"
// @Success 200 {boolean} boolean
// @Security BearerAuth
// @Router /friends/{userId}/accept [put]
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	senderID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	ok, err := s.friendService.AcceptFriendRequest(c.UserContext(), middleware.CurrentUserID(c), senderID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(ok)
}

// RemoveFriendRequest handles DELETE /api/friends/:userId
// @Summary Cancel, decline or unfriend
// @Tags friends
// @Produce json
// @Param userId path int true "Other user ID"
// @Success 200 {boolean} boolean
// @Security BearerAuth
// @Router /friends/{userId} [delete]
func (s *Server) RemoveFriendRequest(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	ok, err := s.friendService.RemoveFriendRequest(c.UserContext(), middleware.CurrentUserID(c), otherID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(ok)
}
