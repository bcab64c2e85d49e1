package repository

import (
	"context"
	"time"

	"fbclone/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint, page PageRequest) (models.Page[*models.Comment], error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type commentRepository struct {
	conns
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB, read ...*gorm.DB) CommentRepository {
	return &commentRepository{conns: newConns(db, read)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Preload("Creator").First(comment, comment.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, page PageRequest) (models.Page[*models.Comment], error) {
	limit := ClampLimit(page.Limit)
	cursor, err := DecodeCursor(page.Cursor)
	if err != nil {
		return models.Page[*models.Comment]{}, err
	}

	q := r.read.WithContext(ctx).Model(&models.Comment{}).
		Preload("Creator").
		Where("comments.post_id = ?", postID)

	var comments []*models.Comment
	if err := keysetPage(q, "comments", limit, cursor).Find(&comments).Error; err != nil {
		return models.Page[*models.Comment]{}, models.NewInternalError(err)
	}
	return buildPage(comments, limit, func(c *models.Comment) (time.Time, uint) {
		return c.CreatedAt, c.ID
	}), nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.read.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
