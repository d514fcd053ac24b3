package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken is a single-use secret mailed to a user who forgot their password.
type PasswordResetToken struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Used      bool      `gorm:"default:false" json:"used"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// Expired reports whether the token can no longer be redeemed at now.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return t.Used || now.After(t.ExpiresAt)
}
