// Package validator holds the credential rules and registers custom
// validation tags with Gin's binding engine.
package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"wdmmg/internal/models"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 8
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// passwordSymbols is the set of characters that satisfy the symbol rule.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// ValidateUsername checks length and character set. It returns false and a
// human-readable reason on the first failing rule.
func ValidateUsername(s string) (bool, string) {
	if len(s) < minUsernameLen || len(s) > maxUsernameLen {
		return false, "Username must be between 3 and 30 characters long"
	}
	if !usernameRegex.MatchString(s) {
		return false, "Username can only contain letters, numbers, and underscores"
	}
	return true, ""
}

// ValidatePassword checks the password rules in a fixed order and returns
// the message for the first one that fails.
func ValidatePassword(s string) (bool, string) {
	if len(s) < minPasswordLen {
		return false, "Password must be at least 8 characters long"
	}

	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	switch {
	case !upper:
		return false, "Password must contain at least one uppercase letter"
	case !lower:
		return false, "Password must contain at least one lowercase letter"
	case !digit:
		return false, "Password must contain at least one number"
	case !symbol:
		return false, "Password must contain at least one special character"
	}
	return true, ""
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("category", validateCategory)
		_ = v.RegisterValidation("username", validateUsernameTag)
		_ = v.RegisterValidation("password", validatePasswordTag)
	}
}

func validateCategory(fl validator.FieldLevel) bool {
	return models.IsValidCategory(fl.Field().String())
}

func validateUsernameTag(fl validator.FieldLevel) bool {
	ok, _ := ValidateUsername(fl.Field().String())
	return ok
}

func validatePasswordTag(fl validator.FieldLevel) bool {
	ok, _ := ValidatePassword(fl.Field().String())
	return ok
}
