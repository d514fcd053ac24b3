package service

import (
	"context"
	"errors"
	"strings"

	"yatube/internal/http-api/models"
	"yatube/internal/http-api/repository"

	"gorm.io/gorm"
)

type CommentService interface {
	AddComment(ctx context.Context, postID int64, authorID, text string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]models.Comment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// AddComment creates a new comment under a post
func (s *commentService) AddComment(ctx context.Context, postID int64, authorID, text string) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     strings.TrimSpace(text),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Reload with author data
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *commentService) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}
