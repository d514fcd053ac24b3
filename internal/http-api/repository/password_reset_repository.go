package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yatube/internal/http-api/models"

	"gorm.io/gorm"
)

var ErrTokenAlreadyUsed = errors.New("password reset token already used")

// PasswordResetRepository handles database operations for password reset tokens
type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(token).Error; err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

// FindByToken: look up the reset token by its secret
func (r *passwordResetRepository) FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var resetToken models.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&resetToken).Error; err != nil {
		return nil, err
	}
	return &resetToken, nil
}

// MarkUsed flips the used flag once; a second redemption gets ErrTokenAlreadyUsed.
func (r *passwordResetRepository) MarkUsed(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if result.Error != nil {
		return fmt.Errorf("mark reset token used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTokenAlreadyUsed
	}
	return nil
}

// DeleteExpired removes used tokens and tokens past their expiry
func (r *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("used = ? OR expires_at < ?", true, now).
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
