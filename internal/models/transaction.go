package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts and limits are stored as NUMERIC(14,2).
const AmountScale = 2

// MaxAmount is the exclusive upper bound of a stored amount: twelve integer digits.
var MaxAmount = decimal.New(1, 12)

// Transaction represents a single categorized expense owned by a user.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount" swaggertype:"string" example:"250.00"`
	Category    Category        `gorm:"type:varchar(50);not null;index" json:"category"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Timestamp   time.Time       `gorm:"not null;index" json:"timestamp"`
}
