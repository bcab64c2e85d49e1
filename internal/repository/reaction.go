package repository

import (
	"context"
	"errors"

	"fbclone/internal/models"
	"fbclone/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository keeps per-user reaction rows and the post counters in step.
type ReactionRepository interface {
	// React applies the toggle state machine for (postID, userID). ok is
	// false when the post does not exist.
	React(ctx context.Context, postID, userID uint, kind models.ReactionKind) (transition models.ReactionTransition, ok bool, err error)
	Get(ctx context.Context, postID, userID uint) (*models.Reaction, error)
	List(ctx context.Context) ([]*models.Reaction, error)
	CountByKind(ctx context.Context, postID uint) (map[models.ReactionKind]int64, error)
}

type reactionRepository struct {
	conns
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB, read ...*gorm.DB) ReactionRepository {
	return &reactionRepository{conns: newConns(db, read)}
}

func (r *reactionRepository) React(ctx context.Context, postID, userID uint, kind models.ReactionKind) (transition models.ReactionTransition, ok bool, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "React", "reactions")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("react", "reactions")()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes concurrent reactions on the same post.
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var existing models.Reaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.Reaction{PostID: postID, UserID: userID, Reaction: kind, Value: 1}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			if err := adjustCounters(tx, postID, map[models.ReactionKind]int{kind: 1}); err != nil {
				return err
			}
			transition = models.ReactionAdded
		case err != nil:
			return err
		case existing.Reaction == kind:
			if err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Reaction{}).Error; err != nil {
				return err
			}
			if err := adjustCounters(tx, postID, map[models.ReactionKind]int{kind: -1}); err != nil {
				return err
			}
			transition = models.ReactionRemoved
		default:
			if err := tx.Model(&models.Reaction{}).
				Where("post_id = ? AND user_id = ?", postID, userID).
				Update("reaction", kind).Error; err != nil {
				return err
			}
			if err := adjustCounters(tx, postID, map[models.ReactionKind]int{kind: 1, existing.Reaction: -1}); err != nil {
				return err
			}
			transition = models.ReactionChanged
		}
		ok = true
		return nil
	})
	if err != nil {
		return "", false, models.NewInternalError(err)
	}
	return transition, ok, nil
}

// adjustCounters applies relative deltas to the posts counter columns in one
// statement.
func adjustCounters(tx *gorm.DB, postID uint, deltas map[models.ReactionKind]int) error {
	updates := make(map[string]any, len(deltas))
	for kind, delta := range deltas {
		col := kind.Column()
		updates[col] = gorm.Expr(col+" + ?", delta)
	}
	return tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumns(updates).Error
}

func (r *reactionRepository) Get(ctx context.Context, postID, userID uint) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.read.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Take(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &reaction, nil
}

func (r *reactionRepository) List(ctx context.Context) ([]*models.Reaction, error) {
	reactions := []*models.Reaction{}
	if err := r.read.WithContext(ctx).Order("post_id ASC, user_id ASC").Find(&reactions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reactions, nil
}

// CountByKind tallies the reaction rows of a post per kind.
func (r *reactionRepository) CountByKind(ctx context.Context, postID uint) (map[models.ReactionKind]int64, error) {
	var rows []struct {
		Reaction models.ReactionKind
		Total    int64
	}
	if err := r.read.WithContext(ctx).Model(&models.Reaction{}).
		Select("reaction, COUNT(*) AS total").
		Where("post_id = ?", postID).
		Group("reaction").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[models.ReactionKind]int64, len(models.ReactionKinds))
	for _, kind := range models.ReactionKinds {
		counts[kind] = 0
	}
	for _, row := range rows {
		counts[row.Reaction] = row.Total
	}
	return counts, nil
}
