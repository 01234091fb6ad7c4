package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wdmmg/internal/logger"
)

const (
	// IdleTimeout is how long a session may go unused before it is dropped.
	IdleTimeout = 30 * time.Minute
	// RefreshAfter is the token age after which a call first rotates the pair.
	RefreshAfter = 45 * time.Minute
)

var (
	// ErrSessionExpired is returned when the session has been idle too long.
	// The session is cleared and no request is sent.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotAuthenticated is returned for authorized calls without a session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger overrides the session logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Session) { s.log = log }
}

// Session holds the credentials of one signed-in user and applies the
// idle timeout and proactive refresh rules before every authorized call.
// It is safe for concurrent use.
type Session struct {
	client *Client
	now    func() time.Time
	log    *zap.SugaredLogger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	issuedAt     time.Time
	lastActivity time.Time
	user         User

	refreshFailures atomic.Int64
}

// NewSession creates an anonymous session on top of c.
func NewSession(c *Client, opts ...Option) *Session {
	s := &Session{
		client: c,
		now:    time.Now,
		log:    logger.Named("client"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login signs in and stores the issued pair.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(res), nil
}

// Signup creates an account and signs in with the issued pair.
func (s *Session) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	res, err := s.client.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(res), nil
}

// Logout clears the session. Server-side revocation is best-effort.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.accessToken
	s.clearLocked()
	s.mu.Unlock()

	if token == "" {
		return
	}
	if err := s.client.Logout(ctx, token); err != nil {
		s.log.Warnw("server logout failed", "error", err)
	}
}

// Authenticated reports whether the session currently holds credentials.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

// User returns the profile the session was established for.
func (s *Session) User() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// RefreshFailures counts proactive refreshes that failed and were skipped.
func (s *Session) RefreshFailures() int64 {
	return s.refreshFailures.Load()
}

func (s *Session) establish(res *AuthResponse) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.accessToken = res.AccessToken
	s.refreshToken = res.RefreshToken
	s.issuedAt = now
	s.lastActivity = now
	s.user = res.User
	user := res.User
	return &user
}

func (s *Session) clearLocked() {
	s.accessToken = ""
	s.refreshToken = ""
	s.issuedAt = time.Time{}
	s.lastActivity = time.Time{}
	s.user = User{}
}

// token returns the access token to use for the next call. The lock is held
// across a proactive refresh so concurrent callers rotate the pair once.
func (s *Session) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == "" {
		return "", ErrNotAuthenticated
	}

	now := s.now()
	if now.Sub(s.lastActivity) > IdleTimeout {
		s.clearLocked()
		return "", ErrSessionExpired
	}

	if now.Sub(s.issuedAt) > RefreshAfter {
		res, err := s.client.Refresh(ctx, s.refreshToken)
		if err != nil {
			s.refreshFailures.Add(1)
			s.log.Warnw("proactive refresh failed, using current token", "user_id", s.user.ID, "error", err)
		} else {
			s.accessToken = res.AccessToken
			s.refreshToken = res.RefreshToken
			s.issuedAt = now
			s.user = res.User
		}
	}

	s.lastActivity = now
	return s.accessToken, nil
}

// call runs an authorized request with the session's current token.
func (s *Session) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	return s.client.do(ctx, method, path, token, query, body, out)
}

// Me fetches the signed-in user's profile.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.call(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return &user, nil
}

// CreateTransaction records a new transaction.
func (s *Session) CreateTransaction(ctx context.Context, in TransactionInput) (*Transaction, error) {
	var txn Transaction
	if err := s.call(ctx, http.MethodPost, "/transactions", nil, in, &txn); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	return &txn, nil
}

// ListTransactions returns every matching transaction, newest first.
func (s *Session) ListTransactions(ctx context.Context, opts ListOptions) ([]Transaction, error) {
	var txns []Transaction
	if err := s.call(ctx, http.MethodGet, "/transactions", opts.values(), nil, &txns); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txns, nil
}

// ListTransactionPage returns one page of matching transactions. Values
// below 1 fall back to the server defaults.
func (s *Session) ListTransactionPage(ctx context.Context, opts ListOptions, page, pageSize int) (*TransactionPage, error) {
	query := opts.values()
	query.Set("page", strconv.Itoa(max(page, 1)))
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}

	var resp TransactionPage
	if err := s.call(ctx, http.MethodGet, "/transactions", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return &resp, nil
}

// GetTransaction fetches a single transaction.
func (s *Session) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var txn Transaction
	if err := s.call(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), nil, nil, &txn); err != nil {
		return nil, fmt.Errorf("fetching transaction: %w", err)
	}
	return &txn, nil
}

// UpdateTransaction replaces a transaction's fields.
func (s *Session) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (*Transaction, error) {
	var txn Transaction
	if err := s.call(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), nil, in, &txn); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}
	return &txn, nil
}

// DeleteTransaction removes a transaction.
func (s *Session) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.call(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

// BulkDeleteTransactions removes the given transactions and returns how many
// were deleted. Unknown ids are skipped by the server.
func (s *Session) BulkDeleteTransactions(ctx context.Context, ids []string) (int64, error) {
	var res struct {
		DeletedCount int64 `json:"deleted_count"`
	}
	body := map[string][]string{"ids": ids}
	if err := s.call(ctx, http.MethodPost, "/transactions/bulk-delete", nil, body, &res); err != nil {
		return 0, fmt.Errorf("bulk deleting transactions: %w", err)
	}
	return res.DeletedCount, nil
}

// ListBudgets returns all of the user's budgets.
func (s *Session) ListBudgets(ctx context.Context) ([]Budget, error) {
	var budgets []Budget
	if err := s.call(ctx, http.MethodGet, "/budgets", nil, nil, &budgets); err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	return budgets, nil
}

// UpsertBudget creates or replaces the budget for a category.
func (s *Session) UpsertBudget(ctx context.Context, category string, monthlyLimit decimal.Decimal) (*Budget, error) {
	body := struct {
		Category     string          `json:"category"`
		MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	}{Category: category, MonthlyLimit: monthlyLimit}

	var budget Budget
	if err := s.call(ctx, http.MethodPost, "/budgets", nil, body, &budget); err != nil {
		return nil, fmt.Errorf("saving budget: %w", err)
	}
	return &budget, nil
}

// GetBudget fetches a single budget.
func (s *Session) GetBudget(ctx context.Context, id string) (*Budget, error) {
	var budget Budget
	if err := s.call(ctx, http.MethodGet, "/budgets/"+url.PathEscape(id), nil, nil, &budget); err != nil {
		return nil, fmt.Errorf("fetching budget: %w", err)
	}
	return &budget, nil
}

// DeleteBudget removes a budget.
func (s *Session) DeleteBudget(ctx context.Context, id string) error {
	if err := s.call(ctx, http.MethodDelete, "/budgets/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}
	return nil
}

// BudgetStatus reports this month's spend against every budget.
func (s *Session) BudgetStatus(ctx context.Context) ([]BudgetStatus, error) {
	var statuses []BudgetStatus
	if err := s.call(ctx, http.MethodGet, "/budgets/status", nil, nil, &statuses); err != nil {
		return nil, fmt.Errorf("fetching budget status: %w", err)
	}
	return statuses, nil
}

// SpendingByCategory returns all-time totals per category.
func (s *Session) SpendingByCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	var totals map[string]decimal.Decimal
	if err := s.call(ctx, http.MethodGet, "/stats/by-category", nil, nil, &totals); err != nil {
		return nil, fmt.Errorf("fetching category totals: %w", err)
	}
	return totals, nil
}

// SpendingTrends returns totals per time bucket for period, one of daily,
// weekly, monthly or yearly.
func (s *Session) SpendingTrends(ctx context.Context, period string) (map[string]decimal.Decimal, error) {
	var trends map[string]decimal.Decimal
	query := url.Values{"period": []string{period}}
	if err := s.call(ctx, http.MethodGet, "/stats/trends", query, nil, &trends); err != nil {
		return nil, fmt.Errorf("fetching trends: %w", err)
	}
	return trends, nil
}
