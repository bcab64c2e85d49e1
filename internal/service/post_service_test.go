package service

import (
	"context"
	"errors"
	"testing"

	"fbclone/internal/media"
	"fbclone/internal/models"
	"fbclone/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePostRequiresTextOrImage(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), noopUserRepo(), &mediaStub{})

	_, err := svc.CreatePost(context.Background(), CreatePostInput{CreatorID: 1, Text: "   "})
	assertFieldError(t, err, "text", "post needs text or an image")
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()
	author := &models.User{ID: 1, Username: "ann", Email: "ann@example.com"}
	users := noopUserRepo(author, &models.User{ID: 2, Username: "ben"}, &models.User{ID: 3, Username: "cat"})

	var saved *models.Post
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 10
		saved = p
		return nil
	}
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		cp := *saved
		cp.Creator = author
		return &cp, nil
	}
	store := &mediaStub{}
	svc := NewPostService(posts, users, store)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		CreatorID: 1,
		Text:      "  hello  ",
		Feeling:   strPtr(" happy "),
		Activity:  strPtr("   "),
		Tagged:    []uint{3, 2, 3, 1, 99},
		Image:     &media.Upload{Content: []byte("img")},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", saved.Text)
	require.NotNil(t, saved.Feeling)
	assert.Equal(t, "happy", *saved.Feeling)
	assert.Nil(t, saved.Activity)
	assert.Equal(t, []uint{3, 2}, saved.Tagged, "dedupes, drops the author and unknown ids")
	require.NotNil(t, saved.ImageID)
	assert.Equal(t, "posts/0.webp", *saved.ImageID)

	assert.Equal(t, "url:posts/0.webp", post.ImageURL)
	require.Len(t, post.TaggedUsers, 2)
	assert.Equal(t, "cat", post.TaggedUsers[0].Username)
	assert.Equal(t, "ben", post.TaggedUsers[1].Username)
	assert.Equal(t, "ann@example.com", post.Creator.Email)
}

func TestPostService_CreatePostDeletesImageOnInsertFailure(t *testing.T) {
	t.Parallel()
	posts := noopPostRepo()
	posts.createFn = func(context.Context, *models.Post) error { return models.NewInternalError(errors.New("db down")) }
	store := &mediaStub{}
	svc := NewPostService(posts, noopUserRepo(), store)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{CreatorID: 1, Image: &media.Upload{Content: []byte("x")}})
	assertAppErrorCode(t, err, models.CodeInternal)
	assert.Equal(t, store.stored, store.deleted)
}

func TestPostService_PostsRedactsCreators(t *testing.T) {
	t.Parallel()
	posts := noopPostRepo()
	var gotFilter repository.PostFilter
	var gotPage repository.PageRequest
	posts.listFn = func(_ context.Context, f repository.PostFilter, p repository.PageRequest) (models.Page[*models.Post], error) {
		gotFilter, gotPage = f, p
		return models.Page[*models.Post]{
			Items: []*models.Post{
				{ID: 2, CreatorID: 5, Creator: &models.User{ID: 5, Email: "five@example.com"}, Tagged: []uint{}},
				{ID: 1, CreatorID: 6, Creator: &models.User{ID: 6, Email: "six@example.com"}, Tagged: []uint{}},
			},
			HasMore:    true,
			NextCursor: "abc",
		}, nil
	}
	svc := NewPostService(posts, noopUserRepo(), &mediaStub{})

	page, err := svc.Posts(context.Background(), 5, ListPostsInput{CreatorID: 5, Limit: 2, Cursor: "xyz"})
	require.NoError(t, err)

	assert.Equal(t, uint(5), gotFilter.CreatorID)
	assert.Equal(t, repository.PageRequest{Limit: 2, Cursor: "xyz"}, gotPage)
	assert.True(t, page.HasMore)
	assert.Equal(t, "five@example.com", page.Items[0].Creator.Email)
	assert.Empty(t, page.Items[1].Creator.Email)
}

func TestPostService_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	image := "posts/p.webp"
	posts := noopPostRepo()
	posts.updateTextFn = func(_ context.Context, id, owner uint, text string) (*models.Post, error) {
		if owner != 1 {
			return nil, nil
		}
		return &models.Post{ID: id, CreatorID: owner, Text: text}, nil
	}
	posts.deleteFn = func(_ context.Context, id, owner uint) (bool, *string, error) {
		if owner != 1 {
			return false, nil, nil
		}
		return true, &image, nil
	}
	store := &mediaStub{}
	svc := NewPostService(posts, noopUserRepo(), store)
	ctx := context.Background()

	updated, err := svc.UpdatePost(ctx, 1, 4, " edited ")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	updated, err = svc.UpdatePost(ctx, 2, 4, "hijack")
	require.NoError(t, err)
	assert.Nil(t, updated)

	ok, err := svc.DeletePost(ctx, 2, 4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.deleted)

	ok, err = svc.DeletePost(ctx, 1, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{image}, store.deleted)
}

func TestPostService_PostNotFound(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), noopUserRepo(), &mediaStub{})

	_, err := svc.Post(context.Background(), 1, 404)
	assert.True(t, models.IsNotFound(err))
}

func TestPostService_TaggedUsersKeepsTagOrder(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), noopUserRepo(&models.User{ID: 2, Username: "b"}, &models.User{ID: 3, Username: "c"}), &mediaStub{})

	users, err := svc.TaggedUsers(context.Background(), 1, &models.Post{Tagged: []uint{3, 8, 2}})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "c", users[0].Username)
	assert.Equal(t, "b", users[1].Username)
}
