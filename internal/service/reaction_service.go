package service

import (
	"context"

	"fbclone/internal/middleware"
	"fbclone/internal/models"
	"fbclone/internal/observability"
	"fbclone/internal/repository"
)

// ReactionService toggles reactions and keeps post counters in step.
type ReactionService struct {
	reactionRepo repository.ReactionRepository
}

func NewReactionService(reactionRepo repository.ReactionRepository) *ReactionService {
	return &ReactionService{reactionRepo: reactionRepo}
}

// React applies kind for the viewer on postID: same kind again removes the
// reaction, a different kind replaces it. A missing post yields false.
func (s *ReactionService) React(ctx context.Context, viewerID, postID uint, kind string) (bool, error) {
	parsed, ok := models.ParseReactionKind(kind)
	if !ok {
		return false, models.NewFieldError("reaction", "unknown reaction")
	}

	transition, ok, err := s.reactionRepo.React(ctx, postID, viewerID, parsed)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	observability.ReactionsTotal.WithLabelValues(string(parsed), string(transition)).Inc()
	middleware.Logger.DebugContext(ctx, "reaction applied", "post_id", postID, "kind", parsed, "transition", transition)
	return true, nil
}

// Reaction returns the viewer's reaction on postID, or nil.
func (s *ReactionService) Reaction(ctx context.Context, viewerID, postID uint) (*models.Reaction, error) {
	return s.reactionRepo.Get(ctx, postID, viewerID)
}

// Reactions lists every reaction row.
func (s *ReactionService) Reactions(ctx context.Context) ([]*models.Reaction, error) {
	return s.reactionRepo.List(ctx)
}

// ReactionCounts tallies the reaction rows on postID per kind. Every kind is
// present, zero when unused.
func (s *ReactionService) ReactionCounts(ctx context.Context, postID uint) (map[models.ReactionKind]int64, error) {
	return s.reactionRepo.CountByKind(ctx, postID)
}
