package services

import (
	"context"
	"time"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/models"
	"wdmmg/internal/pagination"
	"wdmmg/internal/repository"
	"wdmmg/internal/sanitize"
)

const maxDescriptionLength = 500

// transactionService handles transaction-related business logic.
type transactionService struct {
	repo repository.TransactionRepository
	now  func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(repo repository.TransactionRepository) TransactionServicer {
	return &transactionService{repo: repo, now: time.Now}
}

// CreateTransaction validates and stores a new transaction. The timestamp
// defaults to the creation time.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	description, err := validateTransactionInput(in)
	if err != nil {
		return nil, err
	}

	ts := s.now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	ts = ts.UTC()

	txn := &models.Transaction{
		UserID:      userID,
		Amount:      in.Amount,
		Category:    models.Category(in.Category),
		Description: description,
		Timestamp:   ts,
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, apperrors.FromStore(err, nil)
	}
	return txn, nil
}

// GetTransaction retrieves a transaction owned by userID.
func (s *transactionService) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperrors.FromStore(err, apperrors.ErrTransactionNotFound)
	}
	return txn, nil
}

// UpdateTransaction replaces the mutable fields of a transaction. Without a
// timestamp in the input the stored one is kept.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, id string, in TransactionInput) (*models.Transaction, error) {
	description, err := validateTransactionInput(in)
	if err != nil {
		return nil, err
	}

	txn, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperrors.FromStore(err, apperrors.ErrTransactionNotFound)
	}

	txn.Amount = in.Amount
	txn.Category = models.Category(in.Category)
	txn.Description = description
	if in.Timestamp != nil {
		txn.Timestamp = in.Timestamp.UTC()
	}

	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, apperrors.FromStore(err, apperrors.ErrTransactionNotFound)
	}
	return s.GetTransaction(ctx, userID, id)
}

// DeleteTransaction removes a transaction owned by userID.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	n, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return apperrors.FromStore(err, apperrors.ErrTransactionNotFound)
	}
	if n == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// BulkDeleteTransactions removes the listed transactions and returns how
// many were deleted. Unknown or foreign ids are skipped silently.
func (s *transactionService) BulkDeleteTransactions(ctx context.Context, userID string, ids []string) (int64, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "No transaction IDs provided")
	}

	n, err := s.repo.DeleteMany(ctx, userID, unique)
	if err != nil {
		return 0, apperrors.FromStore(err, nil)
	}
	return n, nil
}

// ListAllTransactions returns every matching transaction, newest first. The
// result is never nil.
func (s *transactionService) ListAllTransactions(ctx context.Context, userID string, filter repository.TransactionFilter) ([]models.Transaction, error) {
	txns, err := s.repo.ListRecent(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.FromStore(err, nil)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, nil
}

// ListTransactions returns a page of the owner's transactions, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, filter repository.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	txns, total, err := s.repo.List(ctx, userID, filter, page)
	if err != nil {
		return nil, apperrors.FromStore(err, nil)
	}
	resp := pagination.NewPageResponse(txns, page.Page, page.PageSize, total)
	return &resp, nil
}

// validateTransactionInput checks the amount, category and description
// before any store call and returns the sanitized description.
func validateTransactionInput(in TransactionInput) (string, error) {
	if err := checkAmount(in.Amount, apperrors.ErrInvalidAmount, "Amount"); err != nil {
		return "", err
	}
	if !models.IsValidCategory(in.Category) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidCategory, "Invalid category: "+in.Category)
	}
	description := sanitize.Text(in.Description)
	if description == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Description is required")
	}
	if len(description) > maxDescriptionLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Description must be at most 500 characters")
	}
	return description, nil
}
