package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"wdmmg/internal/aggregate"
	"wdmmg/internal/auth"
	"wdmmg/internal/middleware"
	"wdmmg/internal/models"
	"wdmmg/internal/pagination"
	"wdmmg/internal/repository"
	"wdmmg/internal/services"
	"wdmmg/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	signupFn  func(in services.SignupInput) (*services.AuthResult, error)
	loginFn   func(email, password string) (*services.AuthResult, error)
	refreshFn func(token string) (*services.AuthResult, error)
	loggedOut []string
}

func (m *mockAuthService) Signup(_ context.Context, in services.SignupInput) (*services.AuthResult, error) {
	if m.signupFn != nil {
		return m.signupFn(in)
	}
	return sampleAuthResult(), nil
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (*services.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(email, password)
	}
	return sampleAuthResult(), nil
}

func (m *mockAuthService) Refresh(_ context.Context, token string) (*services.AuthResult, error) {
	if m.refreshFn != nil {
		return m.refreshFn(token)
	}
	return sampleAuthResult(), nil
}

func (m *mockAuthService) Resolve(_ context.Context, _ string) (string, error) {
	return "user-1", nil
}

func (m *mockAuthService) Logout(_ context.Context, userID string) {
	m.loggedOut = append(m.loggedOut, userID)
}

var _ services.AuthServicer = (*mockAuthService)(nil)

type mockUserService struct {
	services.UserServicer
	getProfileFn func(userID string) (*models.UserProfile, error)
}

func (m *mockUserService) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(userID)
	}
	return &models.UserProfile{ID: userID, Username: "alice", Email: "alice@example.com"}, nil
}

type mockTransactionService struct {
	createFn     func(userID string, in services.TransactionInput) (*models.Transaction, error)
	getFn        func(userID, id string) (*models.Transaction, error)
	updateFn     func(userID, id string, in services.TransactionInput) (*models.Transaction, error)
	deleteFn     func(userID, id string) error
	bulkDeleteFn func(userID string, ids []string) (int64, error)
	listFn       func(userID string, filter repository.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	listAllFn    func(userID string, filter repository.TransactionFilter) ([]models.Transaction, error)
}

func (m *mockTransactionService) CreateTransaction(_ context.Context, userID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransaction(_ context.Context, userID, id string) (*models.Transaction, error) {
	if m.getFn != nil {
		return m.getFn(userID, id)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(_ context.Context, userID, id string, in services.TransactionInput) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, id, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(_ context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, id)
	}
	return nil
}

func (m *mockTransactionService) BulkDeleteTransactions(_ context.Context, userID string, ids []string) (int64, error) {
	if m.bulkDeleteFn != nil {
		return m.bulkDeleteFn(userID, ids)
	}
	return int64(len(ids)), nil
}

func (m *mockTransactionService) ListAllTransactions(_ context.Context, userID string, filter repository.TransactionFilter) ([]models.Transaction, error) {
	if m.listAllFn != nil {
		return m.listAllFn(userID, filter)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) ListTransactions(_ context.Context, userID string, filter repository.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.listFn != nil {
		return m.listFn(userID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

type mockBudgetService struct {
	upsertFn func(userID, category string, limit decimal.Decimal) (*models.Budget, error)
	listFn   func(userID string) ([]models.Budget, error)
	getFn    func(userID, id string) (*models.Budget, error)
	deleteFn func(userID, id string) error
}

func (m *mockBudgetService) UpsertBudget(_ context.Context, userID, category string, limit decimal.Decimal) (*models.Budget, error) {
	if m.upsertFn != nil {
		return m.upsertFn(userID, category, limit)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) ListBudgets(_ context.Context, userID string) ([]models.Budget, error) {
	if m.listFn != nil {
		return m.listFn(userID)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) GetBudget(_ context.Context, userID, id string) (*models.Budget, error) {
	if m.getFn != nil {
		return m.getFn(userID, id)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(_ context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, id)
	}
	return nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

type mockStatsService struct {
	byCategoryFn   func(userID string) (map[models.Category]decimal.Decimal, error)
	trendsFn       func(userID, period string) (map[string]decimal.Decimal, error)
	budgetStatusFn func(userID string) ([]aggregate.BudgetStatus, error)
}

func (m *mockStatsService) ByCategory(_ context.Context, userID string) (map[models.Category]decimal.Decimal, error) {
	if m.byCategoryFn != nil {
		return m.byCategoryFn(userID)
	}
	return map[models.Category]decimal.Decimal{}, nil
}

func (m *mockStatsService) Trends(_ context.Context, userID, period string) (map[string]decimal.Decimal, error) {
	if m.trendsFn != nil {
		return m.trendsFn(userID, period)
	}
	return map[string]decimal.Decimal{}, nil
}

func (m *mockStatsService) BudgetStatus(_ context.Context, userID string) ([]aggregate.BudgetStatus, error) {
	if m.budgetStatusFn != nil {
		return m.budgetStatusFn(userID)
	}
	return []aggregate.BudgetStatus{}, nil
}

var _ services.StatsServicer = (*mockStatsService)(nil)

type auditCall struct {
	action, resourceType, resourceID string
}

type mockAuditService struct {
	calls []auditCall
}

func (m *mockAuditService) Log(_ context.Context, _, action, resourceType, resourceID, _ string, _ map[string]any) {
	m.calls = append(m.calls, auditCall{action, resourceType, resourceID})
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func sampleAuthResult() *services.AuthResult {
	return &services.AuthResult{
		Tokens: &auth.TokenPair{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			TokenType:    "bearer",
			ExpiresIn:    3600,
		},
		Profile: &models.UserProfile{
			ID:        "user-1",
			Username:  "alice",
			Email:     "alice@example.com",
			FirstName: "Alice",
			LastName:  "Smith",
		},
	}
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
