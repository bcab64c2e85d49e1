package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fbclone/internal/media"
	"fbclone/internal/models"
	"fbclone/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDsFn         func(context.Context, []uint) ([]*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updatePasswordFn   func(context.Context, uint, string) error
	updateImageFn      func(context.Context, uint, models.ImageKind, string) (*string, error)
	listFn             func(context.Context, int, int) ([]*models.User, error)
	searchByUsernameFn func(context.Context, string, uint) ([]*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) UpdateImage(ctx context.Context, id uint, kind models.ImageKind, key string) (*string, error) {
	return s.updateImageFn(ctx, id, kind, key)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) SearchByUsername(ctx context.Context, query string, excludeID uint) ([]*models.User, error) {
	return s.searchByUsernameFn(ctx, query, excludeID)
}

// usersByID is a user table for stubs: lookups hit the map, misses are NOT_FOUND.
func usersByID(users ...*models.User) map[uint]*models.User {
	m := make(map[uint]*models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m
}

func noopUserRepo(users ...*models.User) *userRepoStub {
	table := usersByID(users...)
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if u, ok := table[id]; ok {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
		getByIDsFn: func(_ context.Context, ids []uint) ([]*models.User, error) {
			var out []*models.User
			for _, id := range ids {
				if u, ok := table[id]; ok {
					out = append(out, u)
				}
			}
			return out, nil
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			for _, u := range table {
				if u.Email == email {
					return u, nil
				}
			}
			return nil, models.NewNotFoundError("User", email)
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			for _, u := range table {
				if u.Username == username {
					return u, nil
				}
			}
			return nil, models.NewNotFoundError("User", username)
		},
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = uint(len(table) + 1)
			table[u.ID] = u
			return nil
		},
		updatePasswordFn:   func(context.Context, uint, string) error { return nil },
		updateImageFn:      func(context.Context, uint, models.ImageKind, string) (*string, error) { return nil, nil },
		listFn:             func(context.Context, int, int) ([]*models.User, error) { return nil, nil },
		searchByUsernameFn: func(context.Context, string, uint) ([]*models.User, error) { return nil, nil },
	}
}

type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint) (*models.Post, error)
	existsFn     func(context.Context, uint) (bool, error)
	listFn       func(context.Context, repository.PostFilter, repository.PageRequest) (models.Page[*models.Post], error)
	updateTextFn func(context.Context, uint, uint, string) (*models.Post, error)
	deleteFn     func(context.Context, uint, uint) (bool, *string, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.PostFilter, page repository.PageRequest) (models.Page[*models.Post], error) {
	return s.listFn(ctx, filter, page)
}
func (s *postRepoStub) UpdateText(ctx context.Context, id, ownerID uint, text string) (*models.Post, error) {
	return s.updateTextFn(ctx, id, ownerID, text)
}
func (s *postRepoStub) Delete(ctx context.Context, id, ownerID uint) (bool, *string, error) {
	return s.deleteFn(ctx, id, ownerID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		},
		existsFn: func(context.Context, uint) (bool, error) { return false, nil },
		listFn: func(context.Context, repository.PostFilter, repository.PageRequest) (models.Page[*models.Post], error) {
			return models.Page[*models.Post]{Items: []*models.Post{}}, nil
		},
		updateTextFn: func(context.Context, uint, uint, string) (*models.Post, error) { return nil, nil },
		deleteFn:     func(context.Context, uint, uint) (bool, *string, error) { return false, nil, nil },
	}
}

type reactionRepoStub struct {
	reactFn       func(context.Context, uint, uint, models.ReactionKind) (models.ReactionTransition, bool, error)
	getFn         func(context.Context, uint, uint) (*models.Reaction, error)
	listFn        func(context.Context) ([]*models.Reaction, error)
	countByKindFn func(context.Context, uint) (map[models.ReactionKind]int64, error)
}

func (s *reactionRepoStub) React(ctx context.Context, postID, userID uint, kind models.ReactionKind) (models.ReactionTransition, bool, error) {
	return s.reactFn(ctx, postID, userID, kind)
}
func (s *reactionRepoStub) Get(ctx context.Context, postID, userID uint) (*models.Reaction, error) {
	return s.getFn(ctx, postID, userID)
}
func (s *reactionRepoStub) List(ctx context.Context) ([]*models.Reaction, error) {
	return s.listFn(ctx)
}
func (s *reactionRepoStub) CountByKind(ctx context.Context, postID uint) (map[models.ReactionKind]int64, error) {
	return s.countByKindFn(ctx, postID)
}

type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	listByPostFn  func(context.Context, uint, repository.PageRequest) (models.Page[*models.Comment], error)
	countByPostFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, page repository.PageRequest) (models.Page[*models.Comment], error) {
	return s.listByPostFn(ctx, postID, page)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

type storyRepoStub struct {
	createFn                func(context.Context, *models.Story) error
	listRecentFromFriendsFn func(context.Context, uint, time.Time) ([]*models.Story, error)
}

func (s *storyRepoStub) Create(ctx context.Context, story *models.Story) error {
	return s.createFn(ctx, story)
}
func (s *storyRepoStub) ListRecentFromFriends(ctx context.Context, me uint, since time.Time) ([]*models.Story, error) {
	return s.listRecentFromFriendsFn(ctx, me, since)
}

type notificationRepoStub struct {
	createFn       func(context.Context, *models.Notification) (bool, error)
	listFn         func(context.Context, uint, repository.PageRequest) (models.Page[*models.Notification], error)
	countUnreadFn  func(context.Context, uint) (int64, error)
	markReceivedFn func(context.Context, uint, []uint) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) (bool, error) {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) List(ctx context.Context, receiverID uint, page repository.PageRequest) (models.Page[*models.Notification], error) {
	return s.listFn(ctx, receiverID, page)
}
func (s *notificationRepoStub) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	return s.countUnreadFn(ctx, receiverID)
}
func (s *notificationRepoStub) MarkReceived(ctx context.Context, receiverID uint, ids []uint) (int64, error) {
	return s.markReceivedFn(ctx, receiverID, ids)
}

type friendRepoStub struct {
	createFn       func(context.Context, uint, uint) (bool, error)
	getBetweenFn   func(context.Context, uint, uint) (*models.FriendRequest, error)
	acceptFn       func(context.Context, uint, uint) (bool, error)
	removeFn       func(context.Context, uint, uint) (bool, error)
	listByUserFn   func(context.Context, uint, models.FriendRequestStatus, int, int) ([]models.FriendRequestWithFriend, bool, error)
	listIncomingFn func(context.Context, uint) ([]models.FriendRequestWithFriend, error)
	listTaggedFn   func(context.Context, uint, string) ([]models.FriendRequestWithFriend, error)
	countFriendsFn func(context.Context, uint) (int64, error)
	friendIDsFn    func(context.Context, uint, int) ([]uint, error)
	connectedIDsFn func(context.Context, uint) ([]uint, error)
	mutualCountFn  func(context.Context, uint, uint) (int64, error)
	strangersFn    func(context.Context, uint, int) ([]*models.User, error)
}

func (s *friendRepoStub) Create(ctx context.Context, senderID, receiverID uint) (bool, error) {
	return s.createFn(ctx, senderID, receiverID)
}
func (s *friendRepoStub) GetBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	return s.getBetweenFn(ctx, a, b)
}
func (s *friendRepoStub) Accept(ctx context.Context, me, other uint) (bool, error) {
	return s.acceptFn(ctx, me, other)
}
func (s *friendRepoStub) Remove(ctx context.Context, me, other uint) (bool, error) {
	return s.removeFn(ctx, me, other)
}
func (s *friendRepoStub) ListByUser(ctx context.Context, userID uint, status models.FriendRequestStatus, limit, skip int) ([]models.FriendRequestWithFriend, bool, error) {
	return s.listByUserFn(ctx, userID, status, limit, skip)
}
func (s *friendRepoStub) ListIncoming(ctx context.Context, me uint) ([]models.FriendRequestWithFriend, error) {
	return s.listIncomingFn(ctx, me)
}
func (s *friendRepoStub) ListTagged(ctx context.Context, me uint, search string) ([]models.FriendRequestWithFriend, error) {
	return s.listTaggedFn(ctx, me, search)
}
func (s *friendRepoStub) CountFriends(ctx context.Context, userID uint) (int64, error) {
	return s.countFriendsFn(ctx, userID)
}
func (s *friendRepoStub) FriendIDs(ctx context.Context, userID uint, limit int) ([]uint, error) {
	return s.friendIDsFn(ctx, userID, limit)
}
func (s *friendRepoStub) ConnectedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.connectedIDsFn(ctx, userID)
}
func (s *friendRepoStub) MutualCount(ctx context.Context, a, b uint) (int64, error) {
	return s.mutualCountFn(ctx, a, b)
}
func (s *friendRepoStub) Strangers(ctx context.Context, me uint, limit int) ([]*models.User, error) {
	return s.strangersFn(ctx, me, limit)
}

func noopFriendRepo() *friendRepoStub {
	return &friendRepoStub{
		createFn:     func(context.Context, uint, uint) (bool, error) { return true, nil },
		getBetweenFn: func(context.Context, uint, uint) (*models.FriendRequest, error) { return nil, nil },
		acceptFn:     func(context.Context, uint, uint) (bool, error) { return false, nil },
		removeFn:     func(context.Context, uint, uint) (bool, error) { return false, nil },
		listByUserFn: func(context.Context, uint, models.FriendRequestStatus, int, int) ([]models.FriendRequestWithFriend, bool, error) {
			return nil, false, nil
		},
		listIncomingFn: func(context.Context, uint) ([]models.FriendRequestWithFriend, error) { return nil, nil },
		listTaggedFn:   func(context.Context, uint, string) ([]models.FriendRequestWithFriend, error) { return nil, nil },
		countFriendsFn: func(context.Context, uint) (int64, error) { return 0, nil },
		friendIDsFn:    func(context.Context, uint, int) ([]uint, error) { return nil, nil },
		connectedIDsFn: func(context.Context, uint) ([]uint, error) { return nil, nil },
		mutualCountFn:  func(context.Context, uint, uint) (int64, error) { return 0, nil },
		strangersFn:    func(context.Context, uint, int) ([]*models.User, error) { return nil, nil },
	}
}

type sessionStub struct {
	created   []uint
	destroyed []string
	err       error
}

func (s *sessionStub) Create(_ context.Context, userID uint) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, userID)
	return "token-" + string(rune('a'+len(s.created)-1)), nil
}

func (s *sessionStub) Destroy(_ context.Context, token string) error {
	s.destroyed = append(s.destroyed, token)
	return s.err
}

type resetStub struct {
	tokens  map[string]uint
	revoked []string
}

func newResetStub() *resetStub {
	return &resetStub{tokens: map[string]uint{}}
}

func (s *resetStub) Issue(_ context.Context, userID uint) (string, error) {
	token := "reset-token"
	s.tokens[token] = userID
	return token, nil
}

func (s *resetStub) Lookup(_ context.Context, token string) (uint, error) {
	return s.tokens[token], nil
}

func (s *resetStub) Revoke(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	delete(s.tokens, token)
	return nil
}

// mediaStub stores nothing; keys are "<prefix>/<n>.webp" and URLs are "url:<key>".
type mediaStub struct {
	stored  []string
	deleted []string
	err     error
}

func (m *mediaStub) Store(_ context.Context, prefix media.Prefix, _ media.Upload) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	key := string(prefix) + "/" + string(rune('0'+len(m.stored))) + ".webp"
	m.stored = append(m.stored, key)
	return key, nil
}

func (m *mediaStub) URL(_ context.Context, key *string) string {
	if key == nil || *key == "" {
		return ""
	}
	return "url:" + *key
}

func (m *mediaStub) Delete(_ context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	m.deleted = append(m.deleted, *key)
}

type publisherStub struct {
	published []*models.Notification
	err       error
}

func (p *publisherStub) PublishNotification(_ context.Context, n *models.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

func strPtr(s string) *string { return &s }

func assertFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	fe, ok := models.AsFieldErrors(err)
	require.True(t, ok, "expected field errors, got %v", err)
	require.Len(t, fe, 1)
	assert.Equal(t, field, fe[0].Field)
	if message != "" {
		assert.Equal(t, message, fe[0].Message)
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}
