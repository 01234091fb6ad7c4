package models

import "github.com/shopspring/decimal"

// Budget is a monthly spending limit for one category. A user has at most
// one budget per category.
type Budget struct {
	Base
	UserID       string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_budgets_user_category" json:"user_id"`
	Category     Category        `gorm:"type:varchar(50);not null;uniqueIndex:idx_budgets_user_category" json:"category"`
	MonthlyLimit decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"monthly_limit" swaggertype:"string" example:"1000.00"`
}
