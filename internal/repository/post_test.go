package repository

import (
	"context"
	"testing"

	"fbclone/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_UpdateTextOwnerOnly(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	users := seedUsers(t, db, "alice", "bob")
	post := seedPost(t, db, users[0].ID, "draft")

	updated, err := repo.UpdateText(ctx, post.ID, users[1].ID, "hijack")
	require.NoError(t, err)
	assert.Nil(t, updated)

	updated, err = repo.UpdateText(ctx, post.ID, users[0].ID, "final")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "final", updated.Text)
	assert.Equal(t, "alice", updated.Creator.Username)

	missing, err := repo.UpdateText(ctx, 999, users[0].ID, "x")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	users := seedUsers(t, db, "alice", "bob")

	image := "posts/pic.webp"
	post := &models.Post{CreatorID: users[0].ID, Text: "pic", ImageID: &image, Tagged: []uint{users[1].ID}}
	require.NoError(t, repo.Create(ctx, post))

	_, _, err := NewReactionRepository(db).React(ctx, post.ID, users[1].ID, models.ReactionLike)
	require.NoError(t, err)
	require.NoError(t, NewCommentRepository(db).Create(ctx, &models.Comment{Text: "nice", CreatorID: users[1].ID, PostID: post.ID}))
	_, err = NewNotificationRepository(db).Create(ctx, &models.Notification{
		Type: models.NotificationComment, ReceiverID: users[0].ID, TriggerID: users[1].ID, PostID: &post.ID,
	})
	require.NoError(t, err)

	deleted, _, err := repo.Delete(ctx, post.ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, deleted, "only the creator may delete")

	deleted, imageID, err := repo.Delete(ctx, post.ID, users[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	require.NotNil(t, imageID)
	assert.Equal(t, image, *imageID)

	for _, model := range []any{&models.Reaction{}, &models.Comment{}, &models.Notification{}, &models.Post{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}

	exists, err := repo.Exists(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostRepository_GetByIDKeepsTags(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	users := seedUsers(t, db, "alice", "bob", "carol")

	post := &models.Post{CreatorID: users[0].ID, Text: "with friends", Tagged: []uint{users[1].ID, users[2].ID}}
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{users[1].ID, users[2].ID}, got.Tagged)
	assert.Equal(t, "alice", got.Creator.Username)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsNotFound(err))
}
