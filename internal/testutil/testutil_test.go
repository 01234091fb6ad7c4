package testutil_test

import (
	"testing"
	"time"

	"wdmmg/internal/errors"
	"wdmmg/internal/models"
	"wdmmg/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)

	var count int64
	for _, table := range []string{"users", "user_profiles", "transactions", "budgets", "refresh_tokens", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	testutil.CreateTestUser(t, first)

	second := testutil.SetupTestDB(t)
	var count int64
	if err := second.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Errorf("expected a fresh database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have a generated ID")
	}

	var profile models.UserProfile
	if err := db.First(&profile, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("profile should share the user's id: %v", err)
	}

	txn := testutil.CreateTestTransaction(t, db, user.ID, "12.50", models.CategoryFood, time.Now())
	if txn.Amount.String() != "12.5" {
		t.Errorf("expected amount 12.5, got %s", txn.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, models.CategoryFood, "300")
	if budget.Category != models.CategoryFood {
		t.Errorf("expected Food budget, got %s", budget.Category)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrNotFound, "NOT_FOUND")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrServiceUnavailable, nil), "SERVICE_UNAVAILABLE")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
