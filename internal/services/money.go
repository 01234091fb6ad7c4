package services

import (
	"github.com/shopspring/decimal"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/models"
)

// checkAmount rejects values the amount columns cannot hold exactly:
// non-positive, finer than cents, or at least models.MaxAmount.
func checkAmount(d decimal.Decimal, invalid *apperrors.AppError, field string) error {
	switch {
	case !d.IsPositive():
		return invalid
	case !d.Equal(d.Truncate(models.AmountScale)):
		return apperrors.WithMessage(invalid, field+" must have at most 2 decimal places")
	case d.GreaterThanOrEqual(models.MaxAmount):
		return apperrors.WithMessage(invalid, field+" must be less than "+models.MaxAmount.String())
	}
	return nil
}
