package service

import (
	"context"
	"strings"

	"fbclone/internal/media"
	"fbclone/internal/models"
	"fbclone/internal/repository"
)

// PostService owns the feed: listing, authoring and removing posts.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	media    MediaStore
}

// CreatePostInput is a new post. Image is optional.
type CreatePostInput struct {
	CreatorID uint
	Text      string
	Feeling   *string
	Activity  *string
	Tagged    []uint
	Image     *media.Upload
}

// ListPostsInput selects a feed page, optionally for one creator.
type ListPostsInput struct {
	CreatorID uint
	Limit     int
	Cursor    string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, mediaStore MediaStore) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		media:    mediaStore,
	}
}

// Posts returns a page of the feed, newest first.
func (s *PostService) Posts(ctx context.Context, viewerID uint, in ListPostsInput) (models.Page[*models.Post], error) {
	page, err := s.postRepo.List(ctx,
		repository.PostFilter{CreatorID: in.CreatorID},
		repository.PageRequest{Limit: in.Limit, Cursor: in.Cursor},
	)
	if err != nil {
		return page, err
	}
	if err := s.present(ctx, viewerID, page.Items...); err != nil {
		return page, err
	}
	return page, nil
}

// Post returns one post or a not-found error.
func (s *PostService) Post(ctx context.Context, viewerID, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.present(ctx, viewerID, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePost stores the optional image and inserts the post. A post needs text or an image.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && in.Image == nil {
		return nil, models.NewFieldError("text", "post needs text or an image")
	}

	tagged, err := s.resolveTagged(ctx, in.CreatorID, in.Tagged)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		CreatorID: in.CreatorID,
		Text:      text,
		Feeling:   trimmed(in.Feeling),
		Activity:  trimmed(in.Activity),
		Tagged:    tagged,
	}

	if in.Image != nil {
		key, err := s.media.Store(ctx, media.PrefixPosts, *in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageID = &key
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.media.Delete(ctx, post.ImageID)
		return nil, err
	}

	return s.Post(ctx, in.CreatorID, post.ID)
}

// UpdatePost replaces the text of a post the viewer owns. It returns nil when
// the post is missing or belongs to someone else.
func (s *PostService) UpdatePost(ctx context.Context, viewerID, id uint, text string) (*models.Post, error) {
	post, err := s.postRepo.UpdateText(ctx, id, viewerID, strings.TrimSpace(text))
	if err != nil || post == nil {
		return nil, err
	}
	if err := s.present(ctx, viewerID, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post the viewer owns together with its reactions,
// comments and notifications, then its image.
func (s *PostService) DeletePost(ctx context.Context, viewerID, id uint) (bool, error) {
	deleted, imageID, err := s.postRepo.Delete(ctx, id, viewerID)
	if err != nil || !deleted {
		return false, err
	}
	s.media.Delete(ctx, imageID)
	return true, nil
}

// TaggedUsers resolves the tagged ids of post to users, in tag order.
func (s *PostService) TaggedUsers(ctx context.Context, viewerID uint, post *models.Post) ([]*models.User, error) {
	if len(post.Tagged) == 0 {
		return []*models.User{}, nil
	}
	users, err := s.userRepo.GetByIDs(ctx, post.Tagged)
	if err != nil {
		return nil, err
	}
	byID := indexUsers(users)
	out := make([]*models.User, 0, len(post.Tagged))
	for _, id := range post.Tagged {
		if u, ok := byID[id]; ok {
			out = append(out, presentUser(ctx, s.media, u, viewerID))
		}
	}
	return out, nil
}

// present fills URLs, redacts the creator and resolves tagged users for
// posts with one user lookup for the whole batch.
func (s *PostService) present(ctx context.Context, viewerID uint, posts ...*models.Post) error {
	var ids []uint
	for _, p := range posts {
		ids = append(ids, p.Tagged...)
	}

	byID := map[uint]*models.User{}
	if len(ids) > 0 {
		users, err := s.userRepo.GetByIDs(ctx, uniqueIDs(ids))
		if err != nil {
			return err
		}
		byID = indexUsers(users)
	}

	for _, p := range posts {
		p.ImageURL = s.media.URL(ctx, p.ImageID)
		p.Creator = presentUser(ctx, s.media, p.Creator, viewerID)
		p.TaggedUsers = make([]*models.User, 0, len(p.Tagged))
		for _, id := range p.Tagged {
			if u, ok := byID[id]; ok {
				p.TaggedUsers = append(p.TaggedUsers, presentUser(ctx, s.media, u, viewerID))
			}
		}
	}
	return nil
}

// resolveTagged keeps the tagged ids that exist, in order, without duplicates
// or the author.
func (s *PostService) resolveTagged(ctx context.Context, creatorID uint, ids []uint) ([]uint, error) {
	candidates := make([]uint, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if id != 0 && id != creatorID {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return []uint{}, nil
	}

	users, err := s.userRepo.GetByIDs(ctx, candidates)
	if err != nil {
		return nil, err
	}
	known := indexUsers(users)

	out := make([]uint, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func indexUsers(users []*models.User) map[uint]*models.User {
	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID
}

// uniqueIDs drops repeats and keeps first-seen order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
