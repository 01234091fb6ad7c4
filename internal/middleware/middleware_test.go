package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	userID string
	err    error
}

func (s stubResolver) Resolve(_ context.Context, _ string) (string, error) {
	return s.userID, s.err
}

type stubLimiter struct {
	decision ratelimit.Decision
	err      error
}

func (s stubLimiter) Allow(_ context.Context, _ ratelimit.Class, _ string) (ratelimit.Decision, error) {
	return s.decision, s.err
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	handlers := append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	r.GET("/test", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		resolver   stubResolver
		wantStatus int
		wantCode   string
	}{
		{"valid", "Bearer good", stubResolver{userID: "u-1"}, http.StatusOK, ""},
		{"lowercase_scheme", "bearer good", stubResolver{userID: "u-1"}, http.StatusOK, ""},
		{"missing_header", "", stubResolver{}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong_scheme", "Basic abc", stubResolver{}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"empty_token", "Bearer ", stubResolver{}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid", "Bearer bad", stubResolver{err: apperrors.ErrInvalidToken}, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired", "Bearer old", stubResolver{err: apperrors.Wrap(apperrors.ErrTokenExpired, errors.New("exp"))}, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(newRouter(AuthMiddleware(tt.resolver)), tt.header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("error code = %q, want %q", code, tt.wantCode)
				}
				return
			}
			if got, _ := parseBody(t, rec)["user_id"].(string); got != tt.resolver.userID {
				t.Errorf("user_id = %q, want %q", got, tt.resolver.userID)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		r := newRouter(RateLimit(stubLimiter{decision: ratelimit.Decision{Allowed: true, Remaining: 3}}, ratelimit.ClassRead))
		if rec := doGet(r, ""); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		r := newRouter(RateLimit(stubLimiter{decision: ratelimit.Decision{RetryAfter: 1500 * time.Millisecond}}, ratelimit.ClassLogin))
		rec := doGet(r, "")

		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want 429", rec.Code)
		}
		if got := rec.Header().Get("Retry-After"); got != "2" {
			t.Errorf("Retry-After = %q, want 2", got)
		}
		errObj := parseBody(t, rec)["error"].(map[string]interface{})
		if errObj["code"] != "RATE_LIMITED" || errObj["retry_after"] != float64(2) {
			t.Errorf("unexpected error body: %v", errObj)
		}
	})

	t.Run("fails_open", func(t *testing.T) {
		r := newRouter(RateLimit(stubLimiter{err: errors.New("redis: connection refused")}, ratelimit.ClassMutate))
		if rec := doGet(r, ""); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200 when the limiter is down", rec.Code)
		}
	})

	t.Run("memory_limiter_end_to_end", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter(ratelimit.Limits{ratelimit.ClassSignup: 2}, time.Now)
		r := newRouter(RateLimit(limiter, ratelimit.ClassSignup))

		for i := 0; i < 2; i++ {
			if rec := doGet(r, ""); rec.Code != http.StatusOK {
				t.Fatalf("call %d: status = %d, want 200", i+1, rec.Code)
			}
		}
		if rec := doGet(r, ""); rec.Code != http.StatusTooManyRequests {
			t.Errorf("third call: status = %d, want 429", rec.Code)
		}
	})
}

func TestErrorHandler_UnexpectedError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", func(c *gin.Context) {
		_ = c.Error(errors.New("boom: secret detail"))
	})

	rec := doGet(r, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	errObj := parseBody(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "INTERNAL_ERROR" || errObj["message"] != apperrors.ErrInternalServer.Message {
		t.Errorf("internal details leaked or wrong code: %v", errObj)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{200 * time.Millisecond, 1},
		{time.Second, 1},
		{1001 * time.Millisecond, 2},
		{59 * time.Second, 59},
	}
	for _, tt := range tests {
		if got := RetryAfterSeconds(tt.in); got != tt.want {
			t.Errorf("RetryAfterSeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := doGet(r, "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("X-Request-ID", "trace-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want trace-123", got)
	}
}
