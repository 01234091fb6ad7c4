// Package repository is the persistence boundary for ledger records. Every
// query is scoped by owner; errors are returned unclassified from GORM.
package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"wdmmg/internal/models"
	"wdmmg/internal/pagination"
)

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Category *models.Category
	From     *time.Time
	To       *time.Time
	// Search is a case-insensitive substring of the description.
	Search string
}

// TransactionRepository defines transaction persistence operations.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	Update(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, userID, id string) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
	List(ctx context.Context, userID string, filter TransactionFilter, page pagination.PageRequest) ([]models.Transaction, int64, error)
	ListAll(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error)
	ListRecent(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create inserts a new transaction.
func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// Update writes the mutable fields of an existing transaction. The owner is
// part of the WHERE clause, so a foreign row is never touched.
func (r *transactionRepository) Update(ctx context.Context, txn *models.Transaction) error {
	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", txn.ID, txn.UserID).
		Updates(map[string]interface{}{
			"amount":      txn.Amount,
			"category":    txn.Category,
			"description": txn.Description,
			"timestamp":   txn.Timestamp,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a transaction owned by userID.
func (r *transactionRepository) FindByID(ctx context.Context, userID, id string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// Delete removes a transaction owned by userID and reports how many rows went.
func (r *transactionRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Transaction{})
	return res.RowsAffected, res.Error
}

// DeleteMany removes every listed transaction owned by userID. Ids that are
// unknown or belong to someone else are skipped.
func (r *transactionRepository) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Transaction{})
	return res.RowsAffected, res.Error
}

// List returns one page of matching transactions, newest first, and the
// total number of matches.
func (r *transactionRepository) List(ctx context.Context, userID string, filter TransactionFilter, page pagination.PageRequest) ([]models.Transaction, int64, error) {
	var total int64
	if err := r.filtered(ctx, userID, filter).Model(&models.Transaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.Transaction
	if err := r.filtered(ctx, userID, filter).
		Order("timestamp DESC").Order("id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListAll returns every matching transaction in chronological order.
func (r *transactionRepository) ListAll(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.filtered(ctx, userID, filter).Order("timestamp ASC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// ListRecent returns every matching transaction, newest first, in the same
// order List pages through.
func (r *transactionRepository) ListRecent(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.filtered(ctx, userID, filter).
		Order("timestamp DESC").Order("id DESC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// filtered starts a fresh owner-scoped query with the filter applied.
func (r *transactionRepository) filtered(ctx context.Context, userID string, f TransactionFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Category != nil {
		db = db.Where("category = ?", *f.Category)
	}
	if f.From != nil {
		db = db.Where("timestamp >= ?", f.From.UTC())
	}
	if f.To != nil {
		db = db.Where("timestamp <= ?", f.To.UTC())
	}
	if f.Search != "" {
		db = db.Where("LOWER(description) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(f.Search))+"%")
	}
	return db
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally inside a LIKE pattern using '!' as
// the escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
