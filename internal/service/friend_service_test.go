package service

import (
	"context"
	"sync"
	"testing"

	"fbclone/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendServiceCreateFriendRequest(t *testing.T) {
	t.Parallel()
	repo := noopFriendRepo()
	calls := 0
	repo.createFn = func(_ context.Context, sender, receiver uint) (bool, error) {
		calls++
		return sender == 1 && receiver == 2, nil
	}
	svc := NewFriendService(repo, noopUserRepo(&models.User{ID: 1}, &models.User{ID: 2}), &mediaStub{})
	ctx := context.Background()

	ok, err := svc.CreateFriendRequest(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, ok, "self request")

	ok, err = svc.CreateFriendRequest(ctx, 1, 99)
	require.NoError(t, err)
	assert.False(t, ok, "unknown receiver")
	assert.Zero(t, calls)

	ok, err = svc.CreateFriendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CreateFriendRequest(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, ok, "store reports the existing edge")
}

func TestFriendServiceGetFriendRequestIsSender(t *testing.T) {
	t.Parallel()
	edge := &models.FriendRequest{ID: 1, SenderID: 1, ReceiverID: 2, Status: models.FriendRequestAccepted}
	repo := noopFriendRepo()
	repo.getBetweenFn = func(_ context.Context, a, b uint) (*models.FriendRequest, error) {
		if (a == 1 && b == 2) || (a == 2 && b == 1) {
			return edge, nil
		}
		return nil, nil
	}
	svc := NewFriendService(repo, noopUserRepo(), &mediaStub{})
	ctx := context.Background()

	asSender, err := svc.GetFriendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, asSender.IsSender)
	assert.Equal(t, edge, asSender.FriendRequest)

	asReceiver, err := svc.GetFriendRequest(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, asReceiver.IsSender)

	none, err := svc.GetFriendRequest(ctx, 1, 3)
	require.NoError(t, err)
	assert.Nil(t, none.FriendRequest)
	assert.False(t, none.IsSender)
}

func TestFriendServiceGetUserFriendRequests(t *testing.T) {
	t.Parallel()
	repo := noopFriendRepo()
	var gotTarget uint
	var gotStatus models.FriendRequestStatus
	var gotLimit, gotSkip int
	repo.listByUserFn = func(_ context.Context, userID uint, status models.FriendRequestStatus, limit, skip int) ([]models.FriendRequestWithFriend, bool, error) {
		gotTarget, gotStatus, gotLimit, gotSkip = userID, status, limit, skip
		return []models.FriendRequestWithFriend{{
			FriendRequest: &models.FriendRequest{ID: 1, SenderID: userID, ReceiverID: 8},
			Friend:        &models.User{ID: 8, Email: "eight@example.com"},
		}}, true, nil
	}
	repo.mutualCountFn = func(_ context.Context, a, b uint) (int64, error) { return 4, nil }
	svc := NewFriendService(repo, noopUserRepo(), &mediaStub{})
	ctx := context.Background()

	own, err := svc.GetUserFriendRequests(ctx, 1, FriendRequestsInput{Limit: 500, Skip: -3})
	require.NoError(t, err)
	assert.Equal(t, uint(1), gotTarget)
	assert.Equal(t, models.FriendRequestAccepted, gotStatus)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 0, gotSkip)
	assert.True(t, own.HasMore)
	assert.Nil(t, own.MutualFriends, "no mutual count for the viewer's own list")
	assert.Empty(t, own.Items[0].Friend.Email)

	other, err := svc.GetUserFriendRequests(ctx, 1, FriendRequestsInput{UserID: 5, Status: models.FriendRequestInProgress, Limit: 2, Skip: 4})
	require.NoError(t, err)
	assert.Equal(t, uint(5), gotTarget)
	assert.Equal(t, models.FriendRequestInProgress, gotStatus)
	assert.Equal(t, 2, gotLimit)
	assert.Equal(t, 4, gotSkip)
	require.NotNil(t, other.MutualFriends)
	assert.Equal(t, int64(4), *other.MutualFriends)

	_, err = svc.GetUserFriendRequests(ctx, 1, FriendRequestsInput{Status: "blocked"})
	assertFieldError(t, err, "status", "")
}

// friendGraph wires the stub to an adjacency list of accepted edges plus a
// set of users with pending edges to the viewer.
func friendGraph(accepted map[uint][]uint, pending map[uint][]uint) *friendRepoStub {
	repo := noopFriendRepo()
	repo.friendIDsFn = func(_ context.Context, userID uint, limit int) ([]uint, error) {
		ids := accepted[userID]
		if len(ids) > limit {
			ids = ids[:limit]
		}
		return ids, nil
	}
	repo.connectedIDsFn = func(_ context.Context, userID uint) ([]uint, error) {
		return append(append([]uint{}, accepted[userID]...), pending[userID]...), nil
	}
	var mu sync.Mutex
	repo.mutualCountFn = func(_ context.Context, a, b uint) (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		friendsOf := func(id uint) map[uint]bool {
			m := map[uint]bool{}
			for _, f := range accepted[id] {
				m[f] = true
			}
			return m
		}
		fa, fb := friendsOf(a), friendsOf(b)
		var n int64
		for id := range fa {
			if fb[id] {
				n++
			}
		}
		return n, nil
	}
	return repo
}

func TestFriendServiceGetSuggestedFriends(t *testing.T) {
	t.Parallel()
	// 1 is friends with 2 and 3. 2 knows 4 and 5, 3 knows 5 and 6.
	// 6 already has a pending edge with 1. 7 is a stranger.
	accepted := map[uint][]uint{
		1: {2, 3},
		2: {1, 4, 5},
		3: {1, 5, 6},
		4: {2},
		5: {2, 3},
		6: {3},
	}
	pending := map[uint][]uint{1: {6}}
	repo := friendGraph(accepted, pending)
	repo.strangersFn = func(context.Context, uint, int) ([]*models.User, error) {
		return []*models.User{{ID: 7, Username: "g"}, {ID: 4, Username: "d"}}, nil
	}

	users := noopUserRepo(
		&models.User{ID: 4, Username: "d", Email: "d@example.com"},
		&models.User{ID: 5, Username: "e"},
		&models.User{ID: 6, Username: "f"},
		&models.User{ID: 7, Username: "g"},
	)
	svc := NewFriendService(repo, users, &mediaStub{})

	got, err := svc.GetSuggestedFriends(context.Background(), 1)
	require.NoError(t, err)

	ids := make([]uint, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.User.ID)
	}
	assert.Equal(t, []uint{4, 5, 7}, ids, "friends of friends first, then strangers, deduplicated")
	assert.Equal(t, int64(1), got[0].MutualFriends)
	assert.Equal(t, int64(2), got[1].MutualFriends)
	assert.Equal(t, int64(0), got[2].MutualFriends)
	assert.Empty(t, got[0].User.Email)
}

func TestFriendServiceGetSuggestedFriendsWithoutFriends(t *testing.T) {
	t.Parallel()
	repo := noopFriendRepo()
	repo.strangersFn = func(_ context.Context, me uint, limit int) ([]*models.User, error) {
		assert.Equal(t, 20, limit)
		return []*models.User{{ID: 2}, {ID: 3}}, nil
	}
	svc := NewFriendService(repo, noopUserRepo(), &mediaStub{})

	got, err := svc.GetSuggestedFriends(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFriendServiceAcceptRemoveAndTags(t *testing.T) {
	t.Parallel()
	repo := noopFriendRepo()
	repo.acceptFn = func(_ context.Context, me, other uint) (bool, error) { return me == 2 && other == 1, nil }
	repo.removeFn = func(_ context.Context, me, other uint) (bool, error) { return true, nil }
	repo.listTaggedFn = func(_ context.Context, me uint, search string) ([]models.FriendRequestWithFriend, error) {
		assert.Equal(t, "al", search)
		return []models.FriendRequestWithFriend{
			{FriendRequest: &models.FriendRequest{ID: 1}, Friend: &models.User{ID: 3, Username: "alan"}},
			{FriendRequest: &models.FriendRequest{ID: 2}},
		}, nil
	}
	repo.countFriendsFn = func(context.Context, uint) (int64, error) { return 12, nil }
	svc := NewFriendService(repo, noopUserRepo(), &mediaStub{})
	ctx := context.Background()

	ok, err := svc.AcceptFriendRequest(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.AcceptFriendRequest(ctx, 3, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.RemoveFriendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	tags, err := svc.GetSuggestedFriendTags(ctx, 1, "al")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "alan", tags[0].Username)

	n, err := svc.FriendCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}
