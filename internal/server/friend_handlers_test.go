package server

import (
	"fmt"
	"net/http"
	"testing"

	"fbclone/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRequestLifecycle(t *testing.T) {
	ts := newTestServer(t)
	annID, ann := ts.register(t, "ann")
	benID, ben := ts.register(t, "ben")
	toBen := fmt.Sprintf("/api/friends/%d", benID)

	resp, data := ts.do(t, http.MethodPost, fmt.Sprintf("/api/friends/%d", annID), ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "false", string(data), "self requests are refused")

	resp, data = ts.do(t, http.MethodPost, toBen, ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "true", string(data))

	resp, data = ts.do(t, http.MethodPost, fmt.Sprintf("/api/friends/%d", annID), ben, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "false", string(data), "one edge per pair")

	resp, data = ts.do(t, http.MethodGet, toBen, ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lookup := decode[models.FriendRequestLookup](t, data)
	require.NotNil(t, lookup.FriendRequest)
	assert.True(t, lookup.IsSender)
	assert.Equal(t, models.FriendRequestInProgress, lookup.FriendRequest.Status)

	resp, data = ts.do(t, http.MethodGet, "/api/friends/incoming", ben, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	incoming := decode[[]models.FriendRequestWithFriend](t, data)
	require.Len(t, incoming, 1)
	assert.Equal(t, "ann", incoming[0].Friend.Username)
	assert.Empty(t, incoming[0].Friend.Email)

	resp, data = ts.do(t, http.MethodPut, fmt.Sprintf("/api/friends/%d/accept", annID), ben, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", string(data))

	resp, data = ts.do(t, http.MethodGet, "/api/friends", ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[models.FriendRequestPage](t, data)
	require.Len(t, page.Items, 1)
	assert.Equal(t, benID, page.Items[0].Friend.ID)
	assert.Nil(t, page.MutualFriends, "own list carries no mutual count")

	resp, data = ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/friend-count", benID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":1}`, string(data))

	resp, data = ts.do(t, http.MethodDelete, toBen, ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", string(data))

	resp, data = ts.do(t, http.MethodGet, toBen, ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[models.FriendRequestLookup](t, data).FriendRequest)
}

func TestMutualFriendsAndStatusFilter(t *testing.T) {
	ts := newTestServer(t)
	annID, ann := ts.register(t, "ann")
	benID, ben := ts.register(t, "ben")
	carolID, carol := ts.register(t, "carol")

	befriend := func(fromToken string, toID uint, acceptToken string, fromID uint) {
		t.Helper()
		resp, data := ts.do(t, http.MethodPost, fmt.Sprintf("/api/friends/%d", toID), fromToken, nil)
		require.Equal(t, "true", string(data), resp.Status)
		resp, data = ts.do(t, http.MethodPut, fmt.Sprintf("/api/friends/%d/accept", fromID), acceptToken, nil)
		require.Equal(t, "true", string(data), resp.Status)
	}
	befriend(ann, carolID, carol, annID)
	befriend(ben, carolID, carol, benID)

	resp, data := ts.do(t, http.MethodGet, fmt.Sprintf("/api/friends/%d/mutual", benID), ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":1}`, string(data))

	resp, data = ts.do(t, http.MethodGet, fmt.Sprintf("/api/friends?userId=%d", benID), ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[models.FriendRequestPage](t, data)
	require.NotNil(t, page.MutualFriends)
	assert.EqualValues(t, 1, *page.MutualFriends)
	require.Len(t, page.Items, 1)
	assert.Equal(t, carolID, page.Items[0].Friend.ID)

	resp, data = ts.do(t, http.MethodGet, "/api/friends?status=in-progress", ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[models.FriendRequestPage](t, data).Items)

	resp, _ = ts.do(t, http.MethodGet, "/api/friends?status=blocked", ann, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = ts.do(t, http.MethodGet, "/api/friends/tags?search=car", ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tags := decode[[]models.User](t, data)
	require.Len(t, tags, 1)
	assert.Equal(t, "carol", tags[0].Username)

	resp, data = ts.do(t, http.MethodGet, "/api/friends/suggestions", ann, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	suggestions := decode[[]models.SuggestedFriend](t, data)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, benID, suggestions[0].User.ID, "friends of friends come first")
	assert.EqualValues(t, 1, suggestions[0].MutualFriends)
}
