package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"wdmmg/internal/aggregate"
	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/models"
	"wdmmg/internal/repository"
)

// statsService loads ledger snapshots and aggregates them.
type statsService struct {
	txns    repository.TransactionRepository
	budgets repository.BudgetRepository
	now     func() time.Time
}

// NewStatsService creates a new StatsServicer.
func NewStatsService(txns repository.TransactionRepository, budgets repository.BudgetRepository) StatsServicer {
	return &statsService{txns: txns, budgets: budgets, now: time.Now}
}

// ByCategory returns all-time spending per category.
func (s *statsService) ByCategory(ctx context.Context, userID string) (map[models.Category]decimal.Decimal, error) {
	txns, err := s.txns.ListAll(ctx, userID, repository.TransactionFilter{})
	if err != nil {
		return nil, apperrors.FromStore(err, nil)
	}
	return aggregate.CategoryTotals(txns), nil
}

// Trends returns spending per time bucket for the given period.
func (s *statsService) Trends(ctx context.Context, userID, period string) (map[string]decimal.Decimal, error) {
	p, err := aggregate.ParsePeriod(period)
	if err != nil {
		return nil, apperrors.ErrInvalidPeriod
	}

	txns, err := s.txns.ListAll(ctx, userID, repository.TransactionFilter{})
	if err != nil {
		return nil, apperrors.FromStore(err, nil)
	}

	trends, err := aggregate.Trends(txns, p)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trends, nil
}

// BudgetStatus reports this month's spend against every budget. Budgets
// and the month's transactions are loaded concurrently.
func (s *statsService) BudgetStatus(ctx context.Context, userID string) ([]aggregate.BudgetStatus, error) {
	monthStart := aggregate.MonthStart(s.now())

	var (
		budgets []models.Budget
		txns    []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.List(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = s.txns.ListAll(gctx, userID, repository.TransactionFilter{From: &monthStart})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.FromStore(err, nil)
	}

	return aggregate.BudgetStatuses(budgets, txns), nil
}
