package service

import (
	"context"
	"strings"

	"fbclone/internal/models"
	"fbclone/internal/repository"
	"fbclone/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	media       MediaStore
}

// CreateCommentInput is a reply on a post.
type CreateCommentInput struct {
	CreatorID uint   `json:"-"`
	PostID    uint   `json:"-"`
	Text      string `json:"text" validate:"notblank,max=10000"`
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, mediaStore MediaStore) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		media:       mediaStore,
	}
}

// CreateComment adds a comment. It returns nil when the post does not exist.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, in.PostID)
	if err != nil || !exists {
		return nil, err
	}

	comment := &models.Comment{
		Text:      in.Text,
		CreatorID: in.CreatorID,
		PostID:    in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Creator = presentUser(ctx, s.media, comment.Creator, in.CreatorID)
	return comment, nil
}

// PostComments returns a page of comments on postID, newest first.
func (s *CommentService) PostComments(ctx context.Context, viewerID, postID uint, page repository.PageRequest) (models.Page[*models.Comment], error) {
	result, err := s.commentRepo.ListByPost(ctx, postID, page)
	if err != nil {
		return result, err
	}
	for _, c := range result.Items {
		c.Creator = presentUser(ctx, s.media, c.Creator, viewerID)
	}
	return result, nil
}

// CommentCount is the number of comments on postID.
func (s *CommentService) CommentCount(ctx context.Context, postID uint) (int64, error) {
	return s.commentRepo.CountByPost(ctx, postID)
}
