package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"wdmmg/internal/aggregate"
	"wdmmg/internal/auth"
	"wdmmg/internal/models"
	"wdmmg/internal/pagination"
	"wdmmg/internal/repository"
)

// UserServicer defines the contract for the identity and profile store.
type UserServicer interface {
	CreateIdentity(ctx context.Context, email, password string) (*models.User, error)
	CreateProfile(ctx context.Context, user *models.User, username, firstName, lastName string) (*models.UserProfile, error)
	DeleteIdentity(ctx context.Context, userID string) error
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// SignupInput carries the fields of a signup request.
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is a session credential pair together with the caller's profile.
type AuthResult struct {
	Tokens  *auth.TokenPair
	Profile *models.UserProfile
}

// AuthServicer defines the session lifecycle: Anonymous -> Authenticated ->
// Expired or LoggedOut.
type AuthServicer interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Resolve(ctx context.Context, accessToken string) (string, error)
	Logout(ctx context.Context, userID string)
}

// TransactionInput holds the writable fields of a transaction. A nil
// Timestamp means "now" on create and "unchanged" on update.
type TransactionInput struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Timestamp   *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	BulkDeleteTransactions(ctx context.Context, userID string, ids []string) (int64, error)
	ListAllTransactions(ctx context.Context, userID string, filter repository.TransactionFilter) ([]models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter repository.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	UpsertBudget(ctx context.Context, userID, category string, limit decimal.Decimal) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]models.Budget, error)
	GetBudget(ctx context.Context, userID, id string) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, id string) error
}

// StatsServicer defines the analytics endpoints. Each call loads the
// owner's records once and hands them to the aggregate package.
type StatsServicer interface {
	ByCategory(ctx context.Context, userID string) (map[models.Category]decimal.Decimal, error)
	Trends(ctx context.Context, userID, period string) (map[string]decimal.Decimal, error)
	BudgetStatus(ctx context.Context, userID string) ([]aggregate.BudgetStatus, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
