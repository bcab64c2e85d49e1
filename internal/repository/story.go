package repository

import (
	"context"
	"time"

	"fbclone/internal/models"

	"gorm.io/gorm"
)

// StoryRepository persists stories and lists them for a viewer's friends.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	ListRecentFromFriends(ctx context.Context, me uint, since time.Time) ([]*models.Story, error)
}

type storyRepository struct {
	conns
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *gorm.DB, read ...*gorm.DB) StoryRepository {
	return &storyRepository{conns: newConns(db, read)}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	if story.Time <= 0 {
		story.Time = models.DefaultStoryTime
	}
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListRecentFromFriends returns stories created after since by users with an
// accepted edge to me, grouped by author and oldest first within each author.
func (r *storyRepository) ListRecentFromFriends(ctx context.Context, me uint, since time.Time) ([]*models.Story, error) {
	stories := []*models.Story{}
	if err := r.read.WithContext(ctx).
		Preload("User").
		Where("stories.created_at > ?", since).
		Where(`EXISTS (
			SELECT 1 FROM friend_requests fr
			WHERE fr.status = ?
			  AND ((fr.sender_id = ? AND fr.receiver_id = stories.user_id)
			    OR (fr.receiver_id = ? AND fr.sender_id = stories.user_id))
		)`, models.FriendRequestAccepted, me, me).
		Order("stories.user_id ASC").
		Order("stories.created_at ASC").
		Find(&stories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}
