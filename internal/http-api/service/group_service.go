package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"yatube/internal/http-api/models"
	"yatube/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrSlugInUse   = errors.New("group slug already in use")
	ErrInvalidSlug = errors.New("slug may contain only letters, numbers, underscores or hyphens")
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type GroupService interface {
	List(ctx context.Context) ([]models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	Create(ctx context.Context, title, slug, description string) (*models.Group, error)
	Delete(ctx context.Context, slug string) error
}

type groupService struct {
	groupRepo repository.GroupRepository
}

func NewGroupService(groupRepo repository.GroupRepository) GroupService {
	return &groupService{groupRepo: groupRepo}
}

func (s *groupService) List(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *groupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) Create(ctx context.Context, title, slug, description string) (*models.Group, error) {
	slug = strings.TrimSpace(slug)
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}

	group := &models.Group{
		Title:       strings.TrimSpace(title),
		Slug:        slug,
		Description: strings.TrimSpace(description),
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugInUse
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) Delete(ctx context.Context, slug string) error {
	if err := s.groupRepo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	return nil
}
