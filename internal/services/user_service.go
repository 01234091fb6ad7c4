package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/logger"
	"wdmmg/internal/models"
)

// userService handles identity and profile persistence.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateIdentity stores a new login identity with a bcrypt password hash.
func (s *userService) CreateIdentity(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:    normalizeEmail(email),
		Password: string(hashedPassword),
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.FromStore(err, nil)
	}
	return user, nil
}

// DeleteIdentity removes an identity that never received a profile.
func (s *userService) DeleteIdentity(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
		return apperrors.FromStore(err, nil)
	}
	return nil
}

// CreateProfile stores the profile for an existing identity.
func (s *userService) CreateProfile(ctx context.Context, user *models.User, username, firstName, lastName string) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		ID:        user.ID,
		Username:  username,
		Email:     user.Email,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, apperrors.FromStore(err, nil)
	}
	return profile, nil
}

// UsernameTaken reports whether a profile already uses username.
func (s *userService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return false, apperrors.FromStore(err, nil)
	}
	return count > 0, nil
}

// EmailTaken reports whether an identity already uses email.
func (s *userService) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", normalizeEmail(email)).Count(&count).Error; err != nil {
		return false, apperrors.FromStore(err, nil)
	}
	return count > 0, nil
}

// Authenticate verifies email and password. Unknown email, wrong password
// and inactive accounts are all reported as ErrInvalidCredentials.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.FromStore(err, nil)
	}

	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		lastLoginUpdateFailures.Add(1)
		logger.Get().Warnw("failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	return &user, nil
}

// GetProfile retrieves a profile by user id.
func (s *userService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		return nil, apperrors.FromStore(err, apperrors.ErrProfileNotFound)
	}
	return &profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
