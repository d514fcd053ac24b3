package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yatube/internal/http-api/models"
	"yatube/internal/http-api/repository"
	"yatube/internal/paginator"
	"yatube/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrNotAuthor     = errors.New("only the author can change this post")
	ErrPageNotFound  = errors.New("page not found")
)

// ImageStorage keeps uploaded post images.
type ImageStorage interface {
	Save(ctx context.Context, img *storage.Upload) (string, error)
	Delete(rel string) error
}

// PostInput carries the submitted fields of the post form.
type PostInput struct {
	Text    string
	GroupID *int64
	// Image replaces the current image when set
	Image      *storage.Upload
	ClearImage bool
}

// ProfilePage is everything the profile page shows about an author.
type ProfilePage struct {
	Author         *models.User
	Page           *paginator.Page[models.Post]
	PostCount      int64
	FollowerCount  int64
	FollowingCount int64
	// Following is true when the viewer follows Author
	Following bool
}

// PostDetail is a post with its discussion.
type PostDetail struct {
	Post            *models.Post
	Comments        []models.Comment
	AuthorPostCount int64
}

type PostService interface {
	Index(ctx context.Context, page string) (*paginator.Page[models.Post], error)
	GroupPosts(ctx context.Context, slug, page string) (*models.Group, *paginator.Page[models.Post], error)
	Profile(ctx context.Context, username, viewerID, page string) (*ProfilePage, error)
	FollowFeed(ctx context.Context, userID, page string) (*paginator.Page[models.Post], error)
	Detail(ctx context.Context, id int64) (*PostDetail, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, authorID string, in PostInput) (*models.Post, error)
	Update(ctx context.Context, id int64, editorID string, in PostInput) (*models.Post, error)
	Delete(ctx context.Context, id int64, userID string) (*models.Post, error)
}

type postService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	images      ImageStorage
	pageSize    int
	logger      *zap.Logger
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	followRepo repository.FollowRepository,
	images ImageStorage,
	pageSize int,
	logger *zap.Logger,
) PostService {
	return &postService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
		images:      images,
		pageSize:    pageSize,
		logger:      logger,
	}
}

func (s *postService) list(ctx context.Context, filter repository.PostFilter, page string) (*paginator.Page[models.Post], error) {
	result, err := s.postRepo.List(ctx, filter, paginator.NewRequest(page, s.pageSize))
	if err != nil {
		if errors.Is(err, paginator.ErrInvalidPage) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return result, nil
}

// Index lists every post, newest first
func (s *postService) Index(ctx context.Context, page string) (*paginator.Page[models.Post], error) {
	return s.list(ctx, repository.PostFilter{}, page)
}

// GroupPosts lists the posts of one group
func (s *postService) GroupPosts(ctx context.Context, slug, page string) (*models.Group, *paginator.Page[models.Post], error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, err
	}

	posts, err := s.list(ctx, repository.PostFilter{GroupID: &group.ID}, page)
	if err != nil {
		return nil, nil, err
	}
	return group, posts, nil
}

// Profile lists an author's posts together with the follow state of the viewer
func (s *postService) Profile(ctx context.Context, username, viewerID, page string) (*ProfilePage, error) {
	author, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.list(ctx, repository.PostFilter{AuthorID: author.ID}, page)
	if err != nil {
		return nil, err
	}

	profile := &ProfilePage{
		Author:    author,
		Page:      posts,
		PostCount: posts.Total,
	}

	if profile.FollowerCount, err = s.followRepo.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.followRepo.CountFollowing(ctx, author.ID); err != nil {
		return nil, err
	}
	if viewerID != "" && viewerID != author.ID {
		if profile.Following, err = s.followRepo.Exists(ctx, viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// FollowFeed lists posts by the authors userID follows
func (s *postService) FollowFeed(ctx context.Context, userID, page string) (*paginator.Page[models.Post], error) {
	return s.list(ctx, repository.PostFilter{FollowerID: userID}, page)
}

// Detail loads a post, its comments and the author's post count
func (s *postService) Detail(ctx context.Context, id int64) (*PostDetail, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.postRepo.Count(ctx, repository.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, Comments: comments, AuthorPostCount: count}, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// Create publishes a new post by authorID
func (s *postService) Create(ctx context.Context, authorID string, in PostInput) (*models.Post, error) {
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     strings.TrimSpace(in.Text),
		AuthorID: authorID,
		GroupID:  in.GroupID,
	}

	if in.Image != nil {
		rel, err := s.images.Save(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = rel
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.discardImage(post.Image)
		return nil, err
	}

	s.logger.Info("Post created", zap.Int64("post_id", post.ID), zap.String("author_id", authorID))
	return post, nil
}

// Update edits a post; only its author may do so
func (s *postService) Update(ctx context.Context, id int64, editorID string, in PostInput) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editorID {
		return nil, ErrNotAuthor
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	oldImage := post.Image
	post.Text = strings.TrimSpace(in.Text)
	post.GroupID = in.GroupID

	switch {
	case in.Image != nil:
		rel, err := s.images.Save(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = rel
	case in.ClearImage:
		post.Image = ""
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			s.discardImage(post.Image)
		}
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	if post.Image != oldImage {
		s.discardImage(oldImage)
	}

	return s.Get(ctx, id)
}

// Delete removes a post and its comments; only its author may do so
func (s *postService) Delete(ctx context.Context, id int64, userID string) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	s.discardImage(post.Image)

	s.logger.Info("Post deleted", zap.Int64("post_id", id), zap.String("author_id", userID))
	return post, nil
}

func (s *postService) findUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *postService) checkGroup(ctx context.Context, groupID *int64) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	return nil
}

func (s *postService) discardImage(rel string) {
	if rel == "" {
		return
	}
	if err := s.images.Delete(rel); err != nil {
		s.logger.Warn("Failed to delete image", zap.String("path", rel), zap.Error(err))
	}
}
