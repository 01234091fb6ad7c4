package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "wdmmg/internal/errors"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

// TokenResolver maps an access token to the id of the user it was issued to.
type TokenResolver interface {
	Resolve(ctx context.Context, accessToken string) (string, error)
}

// AuthMiddleware requires a bearer access token and stores the resolved user
// id in the context. Expired tokens are reported as TOKEN_EXPIRED, anything
// else that fails to parse as INVALID_TOKEN.
func AuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		userID, err := resolver.Resolve(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
