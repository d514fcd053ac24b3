package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"yatube/internal/http-api/models"
	"yatube/internal/http-api/repository"
	"yatube/internal/mail"
	"yatube/internal/middleware/auth"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNameInUse          = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("please enter a correct username and password")
	ErrInvalidSession     = errors.New("invalid session")
	ErrInvalidResetLink   = errors.New("the password reset link was invalid")
)

// PasswordError explains why a new password was refused.
type PasswordError struct {
	Reason string
}

func (e *PasswordError) Error() string {
	return e.Reason
}

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "12345678": {}, "123456789": {}, "1234567890": {},
	"qwerty123": {}, "qwertyuiop": {}, "11111111": {}, "iloveyou": {}, "sunshine": {},
	"abc12345": {}, "football": {}, "letmein1": {}, "baseball": {}, "welcome1": {},
}

// SignupInput is the data of a new account.
type SignupInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

type AuthService interface {
	Register(ctx context.Context, in SignupInput) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	IssueSession(user *models.User) (string, error)
	ResolveSession(ctx context.Context, token string) (*models.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	CheckResetLink(ctx context.Context, uidb64, token string) (*models.User, error)
	ResetPassword(ctx context.Context, uidb64, token, newPassword string) error
}

type authService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	sessions  *auth.SessionManager
	mailer    mail.Mailer
	resetTTL  time.Duration
	siteURL   string
	logger    *zap.Logger
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthOptions holds the settings of NewAuthService.
type AuthOptions struct {
	ResetTTL time.Duration
	SiteURL  string
}

func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	sessions *auth.SessionManager,
	mailer mail.Mailer,
	opts AuthOptions,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		sessions:  sessions,
		mailer:    mailer,
		resetTTL:  opts.ResetTTL,
		siteURL:   strings.TrimRight(opts.SiteURL, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates an account. The caller has already checked the form shape.
func (s *authService) Register(ctx context.Context, in SignupInput) (*models.User, error) {
	if _, err := s.userRepo.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrNameInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := ValidatePassword(in.Password, in.Username, in.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     strings.TrimSpace(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hashedPassword,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks a username/password pair.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// compare against a throwaway hash so unknown users take as long as known ones
		_ = auth.VerifyPassword(s.dummy(), password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("Failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

func (s *authService) IssueSession(user *models.User) (string, error) {
	return s.sessions.Issue(user.ID, user.Username, user.Password)
}

// ResolveSession returns the user a session token belongs to. Tokens issued
// before the last password change are rejected.
func (s *authService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if !user.IsActive || claims.Fingerprint != auth.PasswordFingerprint(user.Password) {
		return nil, ErrInvalidSession
	}
	return user, nil
}

// ChangePassword replaces the password after checking the old one and returns
// the updated user so the caller can reissue its session.
func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := auth.VerifyPassword(user.Password, oldPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset mails a reset link to every active account with the
// address. Unknown addresses are not an error.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	users, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	for _, user := range users {
		token, err := newResetSecret()
		if err != nil {
			return err
		}
		record := &models.PasswordResetToken{
			UserID:    user.ID,
			Token:     hashResetSecret(token),
			ExpiresAt: s.now().Add(s.resetTTL),
		}
		if err := s.resetRepo.Create(ctx, record); err != nil {
			return err
		}

		link := fmt.Sprintf("%s/auth/reset/%s/%s/", s.siteURL, EncodeUID(user.ID), token)
		msg := mail.Message{
			To:      user.Email,
			Subject: "Password reset on Yatube",
			Body: fmt.Sprintf(
				"You're receiving this email because you requested a password reset for your user account.\n\n"+
					"Please go to the following page and choose a new password:\n%s\n\nYour username, in case you've forgotten: %s\n",
				link, user.Username),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			return fmt.Errorf("send reset email: %w", err)
		}
	}
	return nil
}

// CheckResetLink validates a reset link without consuming it.
func (s *authService) CheckResetLink(ctx context.Context, uidb64, token string) (*models.User, error) {
	user, _, err := s.resetRecord(ctx, uidb64, token)
	return user, err
}

// ResetPassword sets a new password through a reset link and consumes the link.
func (s *authService) ResetPassword(ctx context.Context, uidb64, token, newPassword string) error {
	user, record, err := s.resetRecord(ctx, uidb64, token)
	if err != nil {
		return err
	}
	if err := ValidatePassword(newPassword, user.Username, user.Email); err != nil {
		return err
	}
	if err := s.resetRepo.MarkUsed(ctx, record.ID); err != nil {
		if errors.Is(err, repository.ErrTokenAlreadyUsed) {
			return ErrInvalidResetLink
		}
		return err
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *authService) resetRecord(ctx context.Context, uidb64, token string) (*models.User, *models.PasswordResetToken, error) {
	userID, err := DecodeUID(uidb64)
	if err != nil {
		return nil, nil, ErrInvalidResetLink
	}

	record, err := s.resetRepo.FindByToken(ctx, hashResetSecret(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidResetLink
		}
		return nil, nil, err
	}
	if record.UserID != userID || record.Expired(s.now()) {
		return nil, nil, ErrInvalidResetLink
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidResetLink
		}
		return nil, nil, err
	}
	return user, record, nil
}

func (s *authService) setPassword(ctx context.Context, user *models.User, password string) error {
	if err := ValidatePassword(password, user.Username, user.Email); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	user.Password = hashed
	s.logger.Info("Password changed", zap.String("user_id", user.ID))
	return nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("not-a-real-password")
	})
	return s.dummyHash
}

// ValidatePassword applies the password policy. The returned error is a *PasswordError.
func ValidatePassword(password, username, email string) error {
	if len([]rune(password)) < 8 {
		return &PasswordError{Reason: "This password is too short. It must contain at least 8 characters."}
	}

	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return &PasswordError{Reason: "This password is entirely numeric."}
	}

	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return &PasswordError{Reason: "This password is too common."}
	}

	localPart, _, _ := strings.Cut(strings.ToLower(email), "@")
	for _, attr := range []string{strings.ToLower(username), localPart} {
		if attr != "" && (lower == attr || (strings.Contains(lower, attr) && len(attr) >= len(lower)/2)) {
			return &PasswordError{Reason: "The password is too similar to the username."}
		}
	}
	return nil
}

// EncodeUID is the user id as it appears in reset links.
func EncodeUID(userID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userID))
}

func DecodeUID(uidb64 string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func newResetSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// hashResetSecret is what gets stored, so a database leak does not leak live links.
func hashResetSecret(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
