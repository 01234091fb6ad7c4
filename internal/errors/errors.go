// Package errors provides custom error types for the WDMMG API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"net/http"
	"time"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	StatusCode int           `json:"-"`
	Internal   error         `json:"-"`
	RetryAfter time.Duration `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that a
// wrapped copy still matches its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// RateLimited creates a RATE_LIMITED error carrying the retry hint.
func RateLimited(retryAfter time.Duration) *AppError {
	return &AppError{
		Code:       ErrRateLimited.Code,
		Message:    ErrRateLimited.Message,
		StatusCode: ErrRateLimited.StatusCode,
		RetryAfter: retryAfter,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid token", StatusCode: http.StatusUnauthorized}
	ErrTokenExpired       = &AppError{Code: "TOKEN_EXPIRED", Message: "Token has expired", StatusCode: http.StatusUnauthorized}
)

// Validation errors.
var (
	ErrInvalidInput    = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInvalidCategory = &AppError{Code: "INVALID_CATEGORY", Message: "Invalid category", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount   = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be greater than 0", StatusCode: http.StatusBadRequest}
	ErrInvalidLimit    = &AppError{Code: "INVALID_AMOUNT", Message: "Budget limit must be greater than 0", StatusCode: http.StatusBadRequest}
	ErrInvalidPeriod   = &AppError{Code: "INVALID_PERIOD", Message: "Period must be one of: daily, weekly, monthly, yearly", StatusCode: http.StatusBadRequest}
	ErrInvalidUsername = &AppError{Code: "INVALID_USERNAME", Message: "Invalid username", StatusCode: http.StatusBadRequest}
	ErrWeakPassword    = &AppError{Code: "WEAK_PASSWORD", Message: "Password does not meet requirements", StatusCode: http.StatusBadRequest}
)

// Conflict errors. These surface as 400, matching the signup contract.
var (
	ErrUsernameTaken  = &AppError{Code: "USERNAME_TAKEN", Message: "Username already taken", StatusCode: http.StatusBadRequest}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "Email already registered", StatusCode: http.StatusBadRequest}
)

// Not found errors. Records owned by someone else are reported as absent.
var (
	ErrNotFound            = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrProfileNotFound     = &AppError{Code: "PROFILE_NOT_FOUND", Message: "User profile not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrBudgetNotFound      = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)

// Availability and server errors.
var (
	ErrRateLimited        = &AppError{Code: "RATE_LIMITED", Message: "Too many requests. Please try again later.", StatusCode: http.StatusTooManyRequests}
	ErrServiceUnavailable = &AppError{Code: "SERVICE_UNAVAILABLE", Message: "Database service temporarily unavailable. Please try again later.", StatusCode: http.StatusServiceUnavailable}
	ErrInternalServer     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrSessionNotIssued   = &AppError{Code: "SESSION_NOT_ISSUED", Message: "Account created but a session could not be issued. Please log in.", StatusCode: http.StatusInternalServerError}
)
