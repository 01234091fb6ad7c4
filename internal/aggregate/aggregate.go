// Package aggregate computes spending summaries from a snapshot of ledger
// records. Every function is pure: no I/O and no shared state.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"wdmmg/internal/models"
)

// Period is a trend bucket granularity.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// Budget status values.
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusExceeded = "exceeded"
)

// warningThreshold is the percentage of the limit at which a budget warns.
var warningThreshold = decimal.NewFromInt(80)

var hundred = decimal.NewFromInt(100)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// BucketKey returns the trend bucket t falls into. Weekly keys use ISO-8601
// week numbering, so 2024-12-30 belongs to 2025-W01.
func BucketKey(t time.Time, p Period) (string, error) {
	switch p {
	case PeriodDaily:
		return t.Format("2006-01-02"), nil
	case PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), nil
	case PeriodMonthly:
		return t.Format("2006-01"), nil
	case PeriodYearly:
		return t.Format("2006"), nil
	}
	return "", fmt.Errorf("unknown period %q", p)
}

// CategoryTotals sums amounts per category. Categories with no transactions
// or a zero total are absent from the result.
func CategoryTotals(txns []models.Transaction) map[models.Category]decimal.Decimal {
	totals := make(map[models.Category]decimal.Decimal)
	for _, t := range txns {
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	for c, v := range totals {
		if v.IsZero() {
			delete(totals, c)
		}
	}
	return totals
}

// Trends sums amounts per bucket. Only buckets containing at least one
// transaction appear; empty periods are not zero-filled.
func Trends(txns []models.Transaction, p Period) (map[string]decimal.Decimal, error) {
	if _, err := ParsePeriod(string(p)); err != nil {
		return nil, err
	}
	buckets := make(map[string]decimal.Decimal)
	for _, t := range txns {
		key, err := BucketKey(t.Timestamp, p)
		if err != nil {
			return nil, err
		}
		buckets[key] = buckets[key].Add(t.Amount)
	}
	return buckets, nil
}

// SortedKeys returns the keys of m in ascending order. Bucket keys sort
// chronologically as strings.
func SortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BudgetStatus is one budget's standing for the current month.
type BudgetStatus struct {
	BudgetID   string          `json:"budget_id"`
	Category   models.Category `json:"category"`
	Limit      decimal.Decimal `json:"limit" swaggertype:"string"`
	Spent      decimal.Decimal `json:"spent" swaggertype:"string"`
	Remaining  decimal.Decimal `json:"remaining" swaggertype:"string"`
	Percentage float64         `json:"percentage"`
	Status     string          `json:"status"`
}

// BudgetStatuses reports spend against each budget. monthTxns should hold
// only the current month's transactions; spending in categories without a
// budget is ignored. Output order follows budgets.
func BudgetStatuses(budgets []models.Budget, monthTxns []models.Transaction) []BudgetStatus {
	spent := make(map[models.Category]decimal.Decimal, len(budgets))
	for _, t := range monthTxns {
		spent[t.Category] = spent[t.Category].Add(t.Amount)
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		pct := decimal.Zero
		if !b.MonthlyLimit.IsZero() {
			pct = s.Div(b.MonthlyLimit).Mul(hundred).Round(2)
		}

		status := StatusOK
		switch {
		case s.GreaterThan(b.MonthlyLimit):
			status = StatusExceeded
		case pct.GreaterThanOrEqual(warningThreshold):
			status = StatusWarning
		}

		out = append(out, BudgetStatus{
			BudgetID:   b.ID,
			Category:   b.Category,
			Limit:      b.MonthlyLimit,
			Spent:      s,
			Remaining:  b.MonthlyLimit.Sub(s),
			Percentage: pct.InexactFloat64(),
			Status:     status,
		})
	}
	return out
}

// MonthStart returns midnight on the first day of now's month, in now's location.
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
