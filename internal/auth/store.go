package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"wdmmg/internal/models"
)

// ErrRefreshTokenNotFound is returned by Consume when the jti is unknown,
// already consumed, or expired.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshStore tracks outstanding refresh tokens by jti. Consume is atomic:
// of two concurrent calls for the same jti, at most one succeeds.
type RefreshStore interface {
	Save(ctx context.Context, jti, userID string, expiresAt time.Time) error
	Consume(ctx context.Context, jti string) (string, error)
	RevokeUser(ctx context.Context, userID string) error
}

// DBRefreshStore keeps refresh tokens in the refresh_tokens table.
type DBRefreshStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDBRefreshStore creates a DBRefreshStore.
func NewDBRefreshStore(db *gorm.DB) *DBRefreshStore {
	return &DBRefreshStore{db: db, now: time.Now}
}

// Save records a refresh token and purges the user's expired ones.
func (s *DBRefreshStore) Save(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("user_id = ? AND expires_at < ?", userID, s.now()).
		Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("purge expired refresh tokens: %w", err)
	}
	row := &models.RefreshToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	if err := db.Create(row).Error; err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// Consume deletes the token row and returns its owner. The delete's row
// count decides the winner when the same token is redeemed concurrently.
func (s *DBRefreshStore) Consume(ctx context.Context, jti string) (string, error) {
	db := s.db.WithContext(ctx)

	var row models.RefreshToken
	if err := db.Where("jti = ?", jti).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRefreshTokenNotFound
		}
		return "", fmt.Errorf("load refresh token: %w", err)
	}

	res := db.Where("jti = ?", jti).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return "", fmt.Errorf("consume refresh token: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return "", ErrRefreshTokenNotFound
	}
	if !row.ExpiresAt.After(s.now()) {
		return "", ErrRefreshTokenNotFound
	}
	return row.UserID, nil
}

// RevokeUser deletes every outstanding refresh token for the user.
func (s *DBRefreshStore) RevokeUser(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}
