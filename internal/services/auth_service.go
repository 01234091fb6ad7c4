package services

import (
	"context"
	"errors"
	"strings"

	"wdmmg/internal/auth"
	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/logger"
	"wdmmg/internal/sanitize"
	"wdmmg/internal/validator"
)

// authService implements the session lifecycle on top of the identity
// store, the token manager and the refresh store.
type authService struct {
	users  UserServicer
	tokens *auth.TokenManager
	store  auth.RefreshStore
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(users UserServicer, tokens *auth.TokenManager, store auth.RefreshStore) AuthServicer {
	return &authService{users: users, tokens: tokens, store: store}
}

// Signup validates the credentials locally, then creates the identity, the
// profile and a session, in that order.
//
// A failure after the identity exists leaves it in place. Profile failures
// are logged with the orphaned id; session failures surface as
// ErrSessionNotIssued so the client knows to log in.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if ok, reason := validator.ValidateUsername(in.Username); !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidUsername, reason)
	}
	if ok, reason := validator.ValidatePassword(in.Password); !ok {
		return nil, apperrors.WithMessage(apperrors.ErrWeakPassword, reason)
	}

	username := sanitize.Text(in.Username)
	email := strings.TrimSpace(in.Email)
	firstName := sanitize.Text(in.FirstName)
	lastName := sanitize.Text(in.LastName)

	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrUsernameTaken
	}
	if taken, err = s.users.EmailTaken(ctx, email); err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateEmail
	}

	user, err := s.users.CreateIdentity(ctx, email, in.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.users.CreateProfile(ctx, user, username, firstName, lastName)
	if errors.Is(err, apperrors.ErrUsernameTaken) {
		// Claimed concurrently after the check above; drop the profileless identity.
		if delErr := s.users.DeleteIdentity(ctx, user.ID); delErr != nil {
			logger.Get().Errorw("signup left an orphaned identity: username taken concurrently",
				"user_id", user.ID,
				"username", username,
				"error", delErr,
			)
		}
		return nil, apperrors.ErrUsernameTaken
	}
	if err != nil {
		logger.Get().Errorw("signup left an orphaned identity: profile creation failed",
			"user_id", user.ID,
			"username", username,
			"error", err,
		)
		return nil, err
	}

	tokens, err := s.issue(ctx, user.ID, user.Email)
	if err != nil {
		logger.Get().Errorw("signup created identity but could not issue a session",
			"user_id", user.ID,
			"error", err,
		)
		return nil, apperrors.Wrap(apperrors.ErrSessionNotIssued, err)
	}

	return &AuthResult{Tokens: tokens, Profile: profile}, nil
}

// Login verifies credentials and opens a new session.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := s.users.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: tokens, Profile: profile}, nil
}

// Refresh redeems a refresh token for a new pair. The presented token is
// consumed first, so replaying it fails with ErrInvalidToken.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}

	userID, err := s.store.Consume(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.FromStore(err, nil)
	}
	if userID != claims.UserID() {
		return nil, apperrors.ErrInvalidToken
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issue(ctx, userID, claims.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: tokens, Profile: profile}, nil
}

// Resolve maps an access token to its user id.
func (s *authService) Resolve(_ context.Context, accessToken string) (string, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return "", err
	}
	return claims.UserID(), nil
}

// Logout revokes the user's outstanding refresh tokens. It is best-effort:
// failures are logged and counted but never returned.
func (s *authService) Logout(ctx context.Context, userID string) {
	if err := s.store.RevokeUser(ctx, userID); err != nil {
		logoutRevocationFailures.Add(1)
		logger.Get().Warnw("logout: refresh token revocation failed", "user_id", userID, "error", err)
	}
}

// issue signs a pair and records its refresh jti. Nothing is returned
// unless both steps succeed.
func (s *authService) issue(ctx context.Context, userID, email string) (*auth.TokenPair, error) {
	pair, err := s.tokens.IssuePair(userID, email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.store.Save(ctx, pair.RefreshJTI, userID, pair.RefreshExpiresAt); err != nil {
		return nil, apperrors.FromStore(err, nil)
	}
	return pair, nil
}
