package repository

import (
	"context"
	"errors"
	"time"

	"fbclone/internal/models"
	"fbclone/internal/observability"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero values mean no filter.
type PostFilter struct {
	CreatorID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter PostFilter, page PageRequest) (models.Page[*models.Post], error)
	UpdateText(ctx context.Context, id, ownerID uint, text string) (*models.Post, error)
	Delete(ctx context.Context, id, ownerID uint) (deleted bool, imageID *string, err error)
}

// postRepository implements PostRepository
type postRepository struct {
	conns
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, read ...*gorm.DB) PostRepository {
	return &postRepository{conns: newConns(db, read)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Tagged == nil {
		post.Tagged = []uint{}
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.read.WithContext(ctx).Preload("Creator").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.read.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, page PageRequest) (models.Page[*models.Post], error) {
	defer observability.TrackQuery("list", "posts")()

	limit := ClampLimit(page.Limit)
	cursor, err := DecodeCursor(page.Cursor)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}

	q := r.read.WithContext(ctx).Model(&models.Post{}).Preload("Creator")
	if filter.CreatorID != 0 {
		q = q.Where("posts.creator_id = ?", filter.CreatorID)
	}

	var posts []*models.Post
	if err := keysetPage(q, "posts", limit, cursor).Find(&posts).Error; err != nil {
		return models.Page[*models.Post]{}, models.NewInternalError(err)
	}
	return buildPage(posts, limit, postPosition), nil
}

func postPosition(p *models.Post) (time.Time, uint) {
	return p.CreatedAt, p.ID
}

// UpdateText rewrites the body of a post owned by ownerID. It returns nil
// when the post is missing or owned by someone else.
func (r *postRepository) UpdateText(ctx context.Context, id, ownerID uint, text string) (*models.Post, error) {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND creator_id = ?", id, ownerID).
		Update("text", text)
	if result.Error != nil {
		return nil, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Creator").First(&post, id).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// Delete removes a post owned by ownerID together with its reactions,
// comments and notifications. The image key is returned for object cleanup.
func (r *postRepository) Delete(ctx context.Context, id, ownerID uint) (bool, *string, error) {
	var imageID *string
	deleted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("id = ? AND creator_id = ?", id, ownerID).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}

		deleted = result.RowsAffected == 1
		imageID = post.ImageID
		return nil
	})
	if err != nil {
		return false, nil, models.NewInternalError(err)
	}
	return deleted, imageID, nil
}
