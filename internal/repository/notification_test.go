package repository

import (
	"context"
	"testing"

	"fbclone/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_CreateRules(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	users := seedUsers(t, db, "alice", "bob")
	post := seedPost(t, db, users[0].ID, "hello")
	alice, bob := users[0].ID, users[1].ID

	ok, err := repo.Create(ctx, &models.Notification{ReceiverID: alice, TriggerID: alice, Info: "self"})
	require.NoError(t, err)
	assert.False(t, ok)

	reaction := func() *models.Notification {
		return &models.Notification{Type: models.NotificationReaction, ReceiverID: alice, TriggerID: bob, PostID: &post.ID}
	}
	ok, err = repo.Create(ctx, reaction())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Create(ctx, reaction())
	require.NoError(t, err)
	assert.False(t, ok, "duplicate type/post/trigger is suppressed")

	// Rows without a post never collide.
	for i := 0; i < 2; i++ {
		ok, err = repo.Create(ctx, &models.Notification{Type: models.NotificationFriendReq, ReceiverID: alice, TriggerID: bob})
		require.NoError(t, err)
		assert.True(t, ok)
	}

	unread, err := repo.CountUnread(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	var stored models.Notification
	require.NoError(t, db.Where("type = ?", models.NotificationReaction).First(&stored).Error)
	assert.Equal(t, "#", stored.Link)
	assert.Equal(t, models.NotificationSent, stored.Status)
}

func TestNotificationRepository_ListAndMarkReceived(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	users := seedUsers(t, db, "alice", "bob", "carol")
	alice, bob, carol := users[0].ID, users[1].ID, users[2].ID

	var mine []uint
	for i := 0; i < 3; i++ {
		n := &models.Notification{Info: "hi", ReceiverID: alice, TriggerID: bob}
		_, err := repo.Create(ctx, n)
		require.NoError(t, err)
		mine = append(mine, n.ID)
	}
	theirs := &models.Notification{Info: "hi", ReceiverID: carol, TriggerID: bob}
	_, err := repo.Create(ctx, theirs)
	require.NoError(t, err)

	page, err := repo.List(ctx, alice, PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "bob", page.Items[0].Trigger.Username)

	next, err := repo.List(ctx, alice, PageRequest{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.False(t, next.HasMore)
	assert.Len(t, next.Items, 1)

	updated, err := repo.MarkReceived(ctx, alice, append(mine[:2], theirs.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err := repo.CountUnread(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	unread, err = repo.CountUnread(ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestNotificationRepository_CreateMissingReceiver(t *testing.T) {
	db := setupSQLiteDB(t)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	repo := NewNotificationRepository(db)
	users := seedUsers(t, db, "alice")

	ok, err := repo.Create(context.Background(), &models.Notification{ReceiverID: 9999, TriggerID: users[0].ID, Info: "hi"})
	require.NoError(t, err)
	assert.False(t, ok)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}
