package repository

import (
	"context"
	"testing"

	"fbclone/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByPost(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	users := seedUsers(t, db, "alice", "bob")
	post := seedPost(t, db, users[0].ID, "hello")
	other := seedPost(t, db, users[0].ID, "other")

	for _, text := range []string{"a", "b", "c"} {
		c := &models.Comment{Text: text, CreatorID: users[1].ID, PostID: post.ID}
		require.NoError(t, repo.Create(ctx, c))
		assert.Equal(t, "bob", c.Creator.Username)
	}
	require.NoError(t, repo.Create(ctx, &models.Comment{Text: "elsewhere", CreatorID: users[1].ID, PostID: other.ID}))

	page, err := repo.ListByPost(ctx, post.ID, PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].Text)

	rest, err := repo.ListByPost(ctx, post.ID, PageRequest{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.False(t, rest.HasMore)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "a", rest.Items[0].Text)

	count, err := repo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
