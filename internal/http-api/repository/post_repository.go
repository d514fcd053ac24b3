package repository

import (
	"context"
	"fmt"

	"yatube/internal/http-api/models"
	"yatube/internal/paginator"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero fields do not filter.
type PostFilter struct {
	GroupID  *int64
	AuthorID string
	// FollowerID keeps only posts by authors this user follows
	FollowerID string
}

func (f PostFilter) scope(db *gorm.DB) *gorm.DB {
	if f.GroupID != nil {
		db = db.Where("posts.group_id = ?", *f.GroupID)
	}
	if f.AuthorID != "" {
		db = db.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.FollowerID != "" {
		followed := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", f.FollowerID)
		db = db.Where("posts.author_id IN (?)", followed)
	}
	return db
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, req paginator.Request) (*paginator.Page[models.Post], error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Group", "Comments").Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update writes the editable fields; a nil group is stored as NULL.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if result.Error != nil {
		return fmt.Errorf("update post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the post together with its comments.
func (r *postRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns one page of posts, newest first, with author and group loaded.
func (r *postRepository) List(ctx context.Context, filter PostFilter, req paginator.Request) (*paginator.Page[models.Post], error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	number, err := req.Resolve(total)
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	err = r.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(filter.scope).
		Preload("Author").
		Preload("Group").
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(req.PerPage).
		Offset(paginator.Offset(number, req.PerPage)).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return paginator.NewPage(posts, number, total, req.PerPage), nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(filter.scope).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}
