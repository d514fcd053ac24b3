package service

import (
	"context"
	"errors"

	"yatube/internal/http-api/models"
	"yatube/internal/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowService subscribes users to authors. Both operations are idempotent and
// return the author so callers can redirect to their profile.
type FollowService interface {
	Follow(ctx context.Context, userID, username string) (*models.User, error)
	Unfollow(ctx context.Context, userID, username string) (*models.User, error)
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
}

type followService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	logger     *zap.Logger
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, logger *zap.Logger) FollowService {
	return &followService{
		followRepo: followRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (s *followService) Follow(ctx context.Context, userID, username string) (*models.User, error) {
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	// following yourself is silently ignored
	if author.ID == userID {
		return author, nil
	}
	if err := s.followRepo.Add(ctx, userID, author.ID); err != nil {
		return nil, err
	}
	s.logger.Debug("Follow", zap.String("user_id", userID), zap.String("author_id", author.ID))
	return author, nil
}

func (s *followService) Unfollow(ctx context.Context, userID, username string) (*models.User, error) {
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.followRepo.Remove(ctx, userID, author.ID); err != nil {
		return nil, err
	}
	s.logger.Debug("Unfollow", zap.String("user_id", userID), zap.String("author_id", author.ID))
	return author, nil
}

func (s *followService) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	if userID == "" || userID == authorID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}

func (s *followService) author(ctx context.Context, username string) (*models.User, error) {
	author, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return author, nil
}
