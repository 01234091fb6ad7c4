package services

import (
	"context"

	"github.com/shopspring/decimal"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/models"
	"wdmmg/internal/repository"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	repo repository.BudgetRepository
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(repo repository.BudgetRepository) BudgetServicer {
	return &budgetService{repo: repo}
}

// UpsertBudget sets the monthly limit for a category, creating the budget
// if the owner has none for it yet.
func (s *budgetService) UpsertBudget(ctx context.Context, userID, category string, limit decimal.Decimal) (*models.Budget, error) {
	if !models.IsValidCategory(category) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidCategory, "Invalid category: "+category)
	}
	if err := checkAmount(limit, apperrors.ErrInvalidLimit, "Budget limit"); err != nil {
		return nil, err
	}

	budget, err := s.repo.Upsert(ctx, &models.Budget{
		UserID:       userID,
		Category:     models.Category(category),
		MonthlyLimit: limit,
	})
	if err != nil {
		return nil, apperrors.FromStore(err, nil)
	}
	return budget, nil
}

// ListBudgets returns all of the owner's budgets.
func (s *budgetService) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	budgets, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.FromStore(err, nil)
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	return budgets, nil
}

// GetBudget retrieves a budget owned by userID.
func (s *budgetService) GetBudget(ctx context.Context, userID, id string) (*models.Budget, error) {
	budget, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperrors.FromStore(err, apperrors.ErrBudgetNotFound)
	}
	return budget, nil
}

// DeleteBudget removes a budget owned by userID.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, id string) error {
	n, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return apperrors.FromStore(err, apperrors.ErrBudgetNotFound)
	}
	if n == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}
