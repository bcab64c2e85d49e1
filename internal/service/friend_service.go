package service

import (
	"context"

	"fbclone/internal/models"
	"fbclone/internal/observability"
	"fbclone/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	// suggestionFanOut bounds both the friends expanded and the friends read per friend.
	suggestionFanOut = 50
	// suggestionWorkers bounds concurrent store reads while building suggestions.
	suggestionWorkers = 8
)

// FriendService provides friend-request and friendship business logic.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	media      MediaStore
}

// FriendRequestsInput selects a page of edges around UserID (the viewer when zero).
type FriendRequestsInput struct {
	UserID uint
	Status models.FriendRequestStatus
	Limit  int
	Skip   int
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository, mediaStore MediaStore) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		media:      mediaStore,
	}
}

// GetFriendRequest returns the edge between the viewer and other, if any.
func (s *FriendService) GetFriendRequest(ctx context.Context, viewerID, otherID uint) (*models.FriendRequestLookup, error) {
	edge, err := s.friendRepo.GetBetween(ctx, viewerID, otherID)
	if err != nil {
		return nil, err
	}
	return &models.FriendRequestLookup{
		FriendRequest: edge,
		IsSender:      edge != nil && edge.Role(viewerID) == models.RoleSender,
	}, nil
}

// GetUserFriendRequests lists edges touching the target user, newest first.
// Looking at someone else's list also reports how many friends they share
// with the viewer.
func (s *FriendService) GetUserFriendRequests(ctx context.Context, viewerID uint, in FriendRequestsInput) (*models.FriendRequestPage, error) {
	target := in.UserID
	if target == 0 {
		target = viewerID
	}
	status := in.Status
	if status == "" {
		status = models.FriendRequestAccepted
	}
	if status != models.FriendRequestAccepted && status != models.FriendRequestInProgress {
		return nil, models.NewFieldError("status", "must be one of: accepted in-progress")
	}
	skip := in.Skip
	if skip < 0 {
		skip = 0
	}

	items, hasMore, err := s.friendRepo.ListByUser(ctx, target, status, repository.ClampLimit(in.Limit), skip)
	if err != nil {
		return nil, err
	}

	page := &models.FriendRequestPage{
		Items:   s.presentEdges(ctx, viewerID, items),
		HasMore: hasMore,
	}
	if target != viewerID {
		mutual, err := s.friendRepo.MutualCount(ctx, viewerID, target)
		if err != nil {
			return nil, err
		}
		page.MutualFriends = &mutual
	}
	return page, nil
}

// GetMutualFriendsCount counts the friends a and b share.
func (s *FriendService) GetMutualFriendsCount(ctx context.Context, a, b uint) (int64, error) {
	return s.friendRepo.MutualCount(ctx, a, b)
}

// GetSuggestedFriends proposes friends of the viewer's friends first, then
// users with no connection to the viewer, each annotated with the number of
// shared friends. Discovery order is kept and each user appears once.
func (s *FriendService) GetSuggestedFriends(ctx context.Context, viewerID uint) ([]models.SuggestedFriend, error) {
	friends, err := s.friendRepo.FriendIDs(ctx, viewerID, suggestionFanOut)
	if err != nil {
		return nil, err
	}
	connected, err := s.friendRepo.ConnectedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	excluded := make(map[uint]struct{}, len(connected)+1)
	excluded[viewerID] = struct{}{}
	for _, id := range connected {
		excluded[id] = struct{}{}
	}

	// Friends of friends, expanded concurrently but merged in friend order.
	expansions := make([][]uint, len(friends))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(suggestionWorkers)
	for i, friendID := range friends {
		g.Go(func() error {
			ids, err := s.friendRepo.FriendIDs(gctx, friendID, suggestionFanOut)
			if err != nil {
				return err
			}
			expansions[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var candidateIDs []uint
	seen := make(map[uint]struct{})
	for _, ids := range expansions {
		for _, id := range ids {
			if _, skip := excluded[id]; skip {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			candidateIDs = append(candidateIDs, id)
		}
	}

	var candidates []*models.User
	if len(candidateIDs) > 0 {
		users, err := s.userRepo.GetByIDs(ctx, candidateIDs)
		if err != nil {
			return nil, err
		}
		byID := indexUsers(users)
		for _, id := range candidateIDs {
			if u, ok := byID[id]; ok {
				candidates = append(candidates, u)
			}
		}
	}

	strangers, err := s.friendRepo.Strangers(ctx, viewerID, repository.StrangerSampleSize)
	if err != nil {
		return nil, err
	}
	for _, u := range strangers {
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		candidates = append(candidates, u)
	}

	out := make([]models.SuggestedFriend, len(candidates))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(suggestionWorkers)
	for i, u := range candidates {
		g.Go(func() error {
			mutual, err := s.friendRepo.MutualCount(gctx, viewerID, u.ID)
			if err != nil {
				return err
			}
			out[i] = models.SuggestedFriend{
				User:          presentUser(gctx, s.media, u, viewerID),
				MutualFriends: mutual,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSuggestedFriendTags returns the users at the far end of the viewer's
// edges, optionally filtered by a username substring.
func (s *FriendService) GetSuggestedFriendTags(ctx context.Context, viewerID uint, search string) ([]*models.User, error) {
	edges, err := s.friendRepo.ListTagged(ctx, viewerID, search)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(edges))
	for _, e := range edges {
		if e.Friend != nil {
			out = append(out, presentUser(ctx, s.media, e.Friend, viewerID))
		}
	}
	return out, nil
}

// GetInProgressFriendRequests lists pending requests the viewer received.
func (s *FriendService) GetInProgressFriendRequests(ctx context.Context, viewerID uint) ([]models.FriendRequestWithFriend, error) {
	items, err := s.friendRepo.ListIncoming(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.presentEdges(ctx, viewerID, items), nil
}

// FriendCount is the number of accepted friendships of userID.
func (s *FriendService) FriendCount(ctx context.Context, userID uint) (int64, error) {
	return s.friendRepo.CountFriends(ctx, userID)
}

// CreateFriendRequest sends a request from the viewer to receiverID. It
// returns false for self requests, unknown receivers and existing edges.
func (s *FriendService) CreateFriendRequest(ctx context.Context, viewerID, receiverID uint) (bool, error) {
	if viewerID == receiverID || receiverID == 0 {
		observability.FriendRequestsTotal.WithLabelValues("create", observability.Outcome(false)).Inc()
		return false, nil
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if models.IsNotFound(err) {
			observability.FriendRequestsTotal.WithLabelValues("create", observability.Outcome(false)).Inc()
			return false, nil
		}
		return false, err
	}

	created, err := s.friendRepo.Create(ctx, viewerID, receiverID)
	if err != nil {
		return false, err
	}
	observability.FriendRequestsTotal.WithLabelValues("create", observability.Outcome(created)).Inc()
	return created, nil
}

// AcceptFriendRequest turns the edge between the viewer and otherID into a friendship.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, viewerID, otherID uint) (bool, error) {
	ok, err := s.friendRepo.Accept(ctx, viewerID, otherID)
	if err != nil {
		return false, err
	}
	observability.FriendRequestsTotal.WithLabelValues("accept", observability.Outcome(ok)).Inc()
	return ok, nil
}

// RemoveFriendRequest deletes the edge between the viewer and otherID:
// rejecting, cancelling and unfriending are all the same operation.
func (s *FriendService) RemoveFriendRequest(ctx context.Context, viewerID, otherID uint) (bool, error) {
	ok, err := s.friendRepo.Remove(ctx, viewerID, otherID)
	if err != nil {
		return false, err
	}
	observability.FriendRequestsTotal.WithLabelValues("remove", observability.Outcome(ok)).Inc()
	return ok, nil
}

func (s *FriendService) presentEdges(ctx context.Context, viewerID uint, items []models.FriendRequestWithFriend) []models.FriendRequestWithFriend {
	out := make([]models.FriendRequestWithFriend, 0, len(items))
	for _, it := range items {
		out = append(out, models.FriendRequestWithFriend{
			FriendRequest: it.FriendRequest,
			Friend:        presentUser(ctx, s.media, it.Friend, viewerID),
		})
	}
	return out
}
