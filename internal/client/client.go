// Package client provides an HTTP client for the WDMMG ledger API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User is the profile returned by the auth endpoints.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResponse is a token pair plus the profile it was issued for.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         User   `json:"user"`
}

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Transaction is a single ledger entry.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TransactionInput is the payload for creating or updating a transaction.
// A nil Timestamp lets the server pick one.
type TransactionInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Timestamp   *time.Time      `json:"timestamp,omitempty"`
}

// TransactionPage is one page of a transaction listing.
type TransactionPage struct {
	Data       []Transaction `json:"data"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalItems int64         `json:"total_items"`
	TotalPages int           `json:"total_pages"`
}

// ListOptions filters a transaction listing. Zero values are omitted.
type ListOptions struct {
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Category != "" {
		v.Set("category", o.Category)
	}
	if o.StartDate != nil {
		v.Set("start_date", o.StartDate.UTC().Format(time.RFC3339))
	}
	if o.EndDate != nil {
		v.Set("end_date", o.EndDate.UTC().Format(time.RFC3339))
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	return v
}

// Budget is a monthly spending limit for one category.
type Budget struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BudgetStatus reports this month's spend against a budget.
type BudgetStatus struct {
	BudgetID   string          `json:"budget_id"`
	Category   string          `json:"category"`
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	Status     string          `json:"status"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

// Client is a stateless client for the ledger API. Use a Session for
// authenticated calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Signup creates an account and returns its first token pair.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var res AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", nil, req, &res); err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}
	return &res, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var res AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, body, &res); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	return &res, nil
}

// Refresh rotates a refresh token. The presented token is consumed.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var res AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", nil, body, &res); err != nil {
		return nil, fmt.Errorf("refreshing session: %w", err)
	}
	return &res, nil
}

// Logout revokes the refresh tokens of the access token's owner.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", accessToken, nil, nil, nil); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

// Categories lists the fixed spending categories.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, nil, &categories); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error struct {
			Code       string `json:"code"`
			Message    string `json:"message"`
			RetryAfter int    `json:"retry_after"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
		apiErr.RetryAfter = time.Duration(payload.Error.RetryAfter) * time.Second
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return apiErr
}
