package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/models"
)

func setupStatsRouter(statsSvc *mockStatsService) *gin.Engine {
	handler := NewStatsHandler(statsSvc)
	r := gin.New()
	authed := r.Group("", injectUserID("user-1"))
	authed.GET("/stats/by-category", handler.ByCategory)
	authed.GET("/stats/trends", handler.Trends)
	r.GET("/categories", NewCategoryHandler().ListCategories)
	return r
}

func TestStatsHandler_ByCategory(t *testing.T) {
	statsSvc := &mockStatsService{byCategoryFn: func(string) (map[models.Category]decimal.Decimal, error) {
		return map[models.Category]decimal.Decimal{models.CategoryFood: decimal.RequireFromString("15.50")}, nil
	}}
	rec := doRequest(setupStatsRouter(statsSvc), http.MethodGet, "/stats/by-category", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := parseJSON(t, rec); body["Food"] != "15.5" || len(body) != 1 {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestStatsHandler_Trends(t *testing.T) {
	t.Run("defaults to monthly", func(t *testing.T) {
		var gotPeriod string
		statsSvc := &mockStatsService{trendsFn: func(_, period string) (map[string]decimal.Decimal, error) {
			gotPeriod = period
			return map[string]decimal.Decimal{"2024-01": decimal.NewFromInt(30)}, nil
		}}
		rec := doRequest(setupStatsRouter(statsSvc), http.MethodGet, "/stats/trends", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotPeriod != "monthly" {
			t.Errorf("period = %q, want monthly", gotPeriod)
		}
		if parseJSON(t, rec)["2024-01"] != "30" {
			t.Error("expected the 2024-01 bucket")
		}
	})

	t.Run("invalid period", func(t *testing.T) {
		statsSvc := &mockStatsService{trendsFn: func(string, string) (map[string]decimal.Decimal, error) {
			return nil, apperrors.ErrInvalidPeriod
		}}
		rec := doRequest(setupStatsRouter(statsSvc), http.MethodGet, "/stats/trends?period=hourly", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_PERIOD")
	})
}

func TestCategoryHandler_List(t *testing.T) {
	rec := doRequest(setupStatsRouter(&mockStatsService{}), http.MethodGet, "/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var categories []string
	if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if len(categories) != len(models.Categories) || categories[0] != string(models.Categories[0]) {
		t.Errorf("unexpected categories: %v", categories)
	}
}

func TestParseFlexibleTime(t *testing.T) {
	valid := []string{
		"2024-01-15",
		"2024-01-15T10:30",
		"2024-01-15T10:30:00",
		"2024-01-15T10:30:00.123456",
		"2024-01-15T10:30:00Z",
		"2024-01-15T10:30:00+08:00",
		"2024-01-15 10:30:00",
	}
	for _, s := range valid {
		if _, err := parseFlexibleTime(s); err != nil {
			t.Errorf("parseFlexibleTime(%q) failed: %v", s, err)
		}
	}
	for _, s := range []string{"", "15/01/2024", "2024-13-01", "tomorrow"} {
		if _, err := parseFlexibleTime(s); err == nil {
			t.Errorf("parseFlexibleTime(%q) should fail", s)
		}
	}
}
