package repository

import (
	"context"
	"testing"

	"fbclone/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func reloadPost(t *testing.T, db *gorm.DB, id uint) *models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, db.First(&p, id).Error)
	return &p
}

// assertCountersMatchRows checks every counter against the reaction rows.
func assertCountersMatchRows(t *testing.T, repo ReactionRepository, db *gorm.DB, postID uint) {
	t.Helper()
	counts, err := repo.CountByKind(context.Background(), postID)
	require.NoError(t, err)
	post := reloadPost(t, db, postID)
	for _, kind := range models.ReactionKinds {
		assert.Equal(t, counts[kind], int64(post.Counter(kind)), "counter %s", kind)
	}
}

func TestReactionRepository_Scenario(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	users := seedUsers(t, db, "alice", "bob")
	post := seedPost(t, db, users[0].ID, "hello")
	bob := users[1].ID

	transition, ok, err := repo.React(ctx, post.ID, bob, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.ReactionAdded, transition)
	assert.Equal(t, 1, reloadPost(t, db, post.ID).Like)
	row, err := repo.Get(ctx, post.ID, bob)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, models.ReactionLike, row.Reaction)
	assert.Equal(t, 1, row.Value)
	assertCountersMatchRows(t, repo, db, post.ID)

	transition, _, err = repo.React(ctx, post.ID, bob, models.ReactionLove)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionChanged, transition)
	p := reloadPost(t, db, post.ID)
	assert.Equal(t, 0, p.Like)
	assert.Equal(t, 1, p.Love)
	row, err = repo.Get(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionLove, row.Reaction)
	assertCountersMatchRows(t, repo, db, post.ID)

	transition, _, err = repo.React(ctx, post.ID, bob, models.ReactionLove)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionRemoved, transition)
	assert.Equal(t, 0, reloadPost(t, db, post.ID).Love)
	row, err = repo.Get(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.Nil(t, row)
	assertCountersMatchRows(t, repo, db, post.ID)
}

func TestReactionRepository_ToggleRestoresCounters(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	users := seedUsers(t, db, "alice", "bob", "carol")
	post := seedPost(t, db, users[0].ID, "hello")
	_, _, err := repo.React(ctx, post.ID, users[2].ID, models.ReactionHaha)
	require.NoError(t, err)
	before := reloadPost(t, db, post.ID)

	for _, kind := range models.ReactionKinds {
		_, _, err := repo.React(ctx, post.ID, users[1].ID, kind)
		require.NoError(t, err)
		_, _, err = repo.React(ctx, post.ID, users[1].ID, kind)
		require.NoError(t, err)

		after := reloadPost(t, db, post.ID)
		for _, k := range models.ReactionKinds {
			assert.Equal(t, before.Counter(k), after.Counter(k), "%s after toggling %s", k, kind)
		}
		row, err := repo.Get(ctx, post.ID, users[1].ID)
		require.NoError(t, err)
		assert.Nil(t, row)
	}
	assertCountersMatchRows(t, repo, db, post.ID)
}

func TestReactionRepository_MissingPost(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReactionRepository(db)
	users := seedUsers(t, db, "alice")

	transition, ok, err := repo.React(context.Background(), 999, users[0].ID, models.ReactionWow)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, transition)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReactionRepository_LocksPostRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReactionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "posts" WHERE "posts"."id" = \$1 .*FOR UPDATE`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	_, ok, err := repo.React(context.Background(), 7, 2, models.ReactionSad)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
