package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"wdmmg/internal/models"
	"wdmmg/internal/repository"
	"wdmmg/internal/testutil"
)

func newBudgetService(t *testing.T) (BudgetServicer, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewBudgetService(repository.NewBudgetRepository(db)), db
}

func TestUpsertBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("create_then_update_in_place", func(t *testing.T) {
		svc, db := newBudgetService(t)
		user := testutil.CreateTestUser(t, db)

		first, err := svc.UpsertBudget(ctx, user.ID, "Food", decimal.NewFromInt(500))
		testutil.AssertNoError(t, err)

		second, err := svc.UpsertBudget(ctx, user.ID, "Food", decimal.NewFromInt(750))
		testutil.AssertNoError(t, err)

		if second.ID != first.ID {
			t.Errorf("upsert should keep the budget id: %s != %s", second.ID, first.ID)
		}
		if !second.MonthlyLimit.Equal(decimal.NewFromInt(750)) {
			t.Errorf("expected limit 750, got %s", second.MonthlyLimit)
		}

		budgets, err := svc.ListBudgets(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if len(budgets) != 1 {
			t.Errorf("expected one budget per category, got %d", len(budgets))
		}
	})

	t.Run("same_category_different_users", func(t *testing.T) {
		svc, db := newBudgetService(t)
		a := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestUser(t, db)

		ba, err := svc.UpsertBudget(ctx, a.ID, "Food", decimal.NewFromInt(100))
		testutil.AssertNoError(t, err)
		bb, err := svc.UpsertBudget(ctx, b.ID, "Food", decimal.NewFromInt(200))
		testutil.AssertNoError(t, err)

		if ba.ID == bb.ID {
			t.Error("budgets of different users must be distinct")
		}
	})

	t.Run("invalid_category", func(t *testing.T) {
		svc, db := newBudgetService(t)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertBudget(ctx, user.ID, "Rent", decimal.NewFromInt(100))
		testutil.AssertAppError(t, err, "INVALID_CATEGORY")
	})

	t.Run("non_positive_limit", func(t *testing.T) {
		svc, db := newBudgetService(t)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertBudget(ctx, user.ID, "Food", decimal.Zero)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
		_, err = svc.UpsertBudget(ctx, user.ID, "Food", decimal.NewFromInt(-5))
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("limit_outside_stored_format", func(t *testing.T) {
		svc, db := newBudgetService(t)
		user := testutil.CreateTestUser(t, db)

		for _, limit := range []string{"0.001", "500.125", "1000000000000", "100000000000000"} {
			_, err := svc.UpsertBudget(ctx, user.ID, "Food", decimal.RequireFromString(limit))
			testutil.AssertAppError(t, err, "INVALID_AMOUNT")
		}

		var count int64
		db.Model(&models.Budget{}).Count(&count)
		if count != 0 {
			t.Errorf("rejected limits must not be stored, found %d rows", count)
		}

		_, err := svc.UpsertBudget(ctx, user.ID, "Food", decimal.RequireFromString("999999999999.99"))
		testutil.AssertNoError(t, err)
	})
}

func TestListBudgets(t *testing.T) {
	ctx := context.Background()
	svc, db := newBudgetService(t)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	empty, err := svc.ListBudgets(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected an empty non-nil list, got %v", empty)
	}

	testutil.CreateTestBudget(t, db, user.ID, models.CategoryFood, "100")
	testutil.CreateTestBudget(t, db, user.ID, models.CategoryBills, "300")
	testutil.CreateTestBudget(t, db, other.ID, models.CategoryFood, "50")

	budgets, err := svc.ListBudgets(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}
	for _, b := range budgets {
		if b.UserID != user.ID {
			t.Errorf("foreign budget leaked: %+v", b)
		}
	}
}

func TestGetBudget(t *testing.T) {
	ctx := context.Background()
	svc, db := newBudgetService(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, owner.ID, models.CategoryFood, "100")

	got, err := svc.GetBudget(ctx, owner.ID, budget.ID)
	testutil.AssertNoError(t, err)
	if got.Category != models.CategoryFood {
		t.Errorf("expected Food, got %s", got.Category)
	}

	_, err = svc.GetBudget(ctx, other.ID, budget.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestDeleteBudget(t *testing.T) {
	ctx := context.Background()
	svc, db := newBudgetService(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, owner.ID, models.CategoryFood, "100")

	err := svc.DeleteBudget(ctx, other.ID, budget.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteBudget(ctx, owner.ID, budget.ID))

	err = svc.DeleteBudget(ctx, owner.ID, budget.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

	// The category is free again once its budget is gone.
	_, err = svc.UpsertBudget(ctx, owner.ID, "Food", decimal.NewFromInt(10))
	testutil.AssertNoError(t, err)
}
