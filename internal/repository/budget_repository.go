package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wdmmg/internal/models"
)

// BudgetRepository defines budget persistence operations.
type BudgetRepository interface {
	Upsert(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	List(ctx context.Context, userID string) ([]models.Budget, error)
	FindByID(ctx context.Context, userID, id string) (*models.Budget, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
}

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository.
func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

// Upsert inserts the budget or, when the owner already has one for the
// category, overwrites its limit and stamps updated_at. The stored row is
// returned. Concurrent upserts for one category resolve as last write wins.
func (r *budgetRepository) Upsert(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	db := r.db.WithContext(ctx)
	budget.UpdatedAt = time.Now()

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"monthly_limit", "updated_at"}),
	}).Create(budget).Error
	if err != nil {
		return nil, err
	}

	var stored models.Budget
	if err := db.Where("user_id = ? AND category = ?", budget.UserID, budget.Category).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// List returns the owner's budgets in creation order.
func (r *budgetRepository) List(ctx context.Context, userID string) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// FindByID finds a budget owned by userID.
func (r *budgetRepository) FindByID(ctx context.Context, userID, id string) (*models.Budget, error) {
	var budget models.Budget
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

// Delete removes a budget owned by userID and reports how many rows went.
func (r *budgetRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Budget{})
	return res.RowsAffected, res.Error
}
