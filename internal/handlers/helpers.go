package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/middleware"
	"wdmmg/internal/models"
	wdmmgvalidator "wdmmg/internal/validator"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// bindError turns a request binding failure into the matching validation
// error. Custom tags keep their own codes so clients see the same error
// whether a rule fails at binding or in the service.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request body")
	}

	fe := verrs[0]
	value, _ := fe.Value().(string)
	field := jsonFieldName(fe)
	switch fe.Tag() {
	case "category":
		return apperrors.WithMessage(apperrors.ErrInvalidCategory, invalidCategoryMessage())
	case "username":
		_, reason := wdmmgvalidator.ValidateUsername(value)
		return apperrors.WithMessage(apperrors.ErrInvalidUsername, reason)
	case "password":
		_, reason := wdmmgvalidator.ValidatePassword(value)
		return apperrors.WithMessage(apperrors.ErrWeakPassword, reason)
	case "required":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, field+" is required")
	case "email":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid email address")
	case "max":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+field)
	}
}

func jsonFieldName(fe validator.FieldError) string {
	return toSnake(fe.Field())
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func invalidCategoryMessage() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return "Invalid category. Must be one of: " + strings.Join(names, ", ")
}

// isoLayouts are the accepted forms of an ISO-8601 date or date-time.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseFlexibleTime parses an ISO-8601 date or date-time. Values without a
// zone are taken as UTC.
func parseFlexibleTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
