// Package auth issues and verifies session credentials and tracks which
// refresh tokens are still redeemable.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/uuid"
)

const (
	issuer = "wdmmg-api"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims represents the claims in the JWT
type Claims struct {
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

// TokenPair is a freshly issued access/refresh credential pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`

	// RefreshJTI and RefreshExpiresAt describe the refresh token for the store.
	RefreshJTI       string    `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// TokenManager signs and verifies HS256 access and refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a TokenManager. Non-positive TTLs fall back to
// one hour for access tokens and seven days for refresh tokens.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for issuing and validating tokens.
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}

// AccessTTL returns the lifetime of issued access tokens.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL returns the lifetime of issued refresh tokens.
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssuePair signs a new access token and refresh token for the user.
// Each token carries a random jti, so two pairs issued in the same second
// are still distinct.
func (m *TokenManager) IssuePair(userID, email string) (*TokenPair, error) {
	now := m.now()

	access, _, err := m.sign(userID, email, TokenTypeAccess, now, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, jti, err := m.sign(userID, email, TokenTypeRefresh, now, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "bearer",
		ExpiresIn:        int64(m.accessTTL.Seconds()),
		RefreshJTI:       jti,
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}, nil
}

func (m *TokenManager) sign(userID, email, tokenType string, now time.Time, ttl time.Duration) (string, string, error) {
	jti := uuid.New()
	claims := &Claims{
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return signed, jti, err
}

// ParseAccess verifies an access token. Expired tokens yield
// ErrTokenExpired; every other failure yields ErrInvalidToken.
func (m *TokenManager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess)
}

// ParseRefresh verifies a refresh token with the same error contract as
// ParseAccess.
func (m *TokenManager) ParseRefresh(token string) (*Claims, error) {
	return m.parse(token, TokenTypeRefresh)
}

func (m *TokenManager) parse(tokenString, wantType string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(apperrors.ErrTokenExpired, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.TokenType != wantType || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
