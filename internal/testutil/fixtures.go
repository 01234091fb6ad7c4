package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"wdmmg/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "Secur3P@ss"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user and profile with a unique email and username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWith(t, db, fmt.Sprintf("user%d@test.com", n), fmt.Sprintf("user_%d", n))
}

// CreateTestUserWith creates a user and profile with the given email and username.
func CreateTestUserWith(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	profile := &models.UserProfile{
		ID:       user.ID,
		Username: username,
		Email:    email,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return user
}

// CreateTestTransaction creates a transaction with the given amount, category
// and timestamp.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, amount string, category models.Category, ts time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: fmt.Sprintf("Test transaction %d", nextID()),
		Timestamp:   ts,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestBudget creates a budget with the given monthly limit.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, category models.Category, limit string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:       userID,
		Category:     category,
		MonthlyLimit: decimal.RequireFromString(limit),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
