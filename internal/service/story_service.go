package service

import (
	"context"
	"time"

	"fbclone/internal/media"
	"fbclone/internal/models"
	"fbclone/internal/repository"
)

type StoryService struct {
	storyRepo repository.StoryRepository
	media     MediaStore
	now       func() time.Time
}

// CreateStoryInput is a new story. Either Text or Image is required.
type CreateStoryInput struct {
	UserID   uint
	Text     *string
	Font     *string
	Gradient *string
	Time     *int
	Image    *media.Upload
}

func NewStoryService(storyRepo repository.StoryRepository, mediaStore MediaStore) *StoryService {
	return &StoryService{
		storyRepo: storyRepo,
		media:     mediaStore,
		now:       time.Now,
	}
}

// RecentStories returns stories from the viewer's friends posted within the
// visibility window, grouped by author and oldest first.
func (s *StoryService) RecentStories(ctx context.Context, viewerID uint) ([]*models.Story, error) {
	stories, err := s.storyRepo.ListRecentFromFriends(ctx, viewerID, s.now().Add(-models.StoryWindow))
	if err != nil {
		return nil, err
	}
	for _, st := range stories {
		s.present(ctx, viewerID, st)
	}
	return stories, nil
}

// CreateStory stores the optional image and inserts the story.
func (s *StoryService) CreateStory(ctx context.Context, in CreateStoryInput) (*models.Story, error) {
	text := trimmed(in.Text)
	if text == nil && in.Image == nil {
		return nil, models.NewFieldError("text", "story needs text or an image")
	}

	story := &models.Story{
		UserID:   in.UserID,
		Text:     text,
		Font:     trimmed(in.Font),
		Gradient: trimmed(in.Gradient),
		Time:     models.DefaultStoryTime,
	}
	if in.Time != nil && *in.Time > 0 {
		story.Time = *in.Time
	}

	if in.Image != nil {
		key, err := s.media.Store(ctx, media.PrefixStories, *in.Image)
		if err != nil {
			return nil, err
		}
		story.ImageID = &key
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		s.media.Delete(ctx, story.ImageID)
		return nil, err
	}
	s.present(ctx, in.UserID, story)
	return story, nil
}

func (s *StoryService) present(ctx context.Context, viewerID uint, st *models.Story) {
	st.ImageURL = s.media.URL(ctx, st.ImageID)
	st.User = presentUser(ctx, s.media, st.User, viewerID)
}
