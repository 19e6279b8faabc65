// Package dashboard computes time-windowed financial aggregates.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/service"
)

const (
	historyMonths     = 6
	projectionMonths  = 3
	topMerchantCount  = 10
	projectionTopN    = 5
	defaultPeriodDays = 30
)

// Engine computes dashboard payloads over a user's transactions,
// memoizing results until the next write clears the cache.
type Engine struct {
	store service.Storage
	cache service.ResultCache
	now   func() time.Time
}

// NewEngine creates a dashboard engine using the wall clock.
func NewEngine(store service.Storage, cache service.ResultCache) *Engine {
	return &Engine{store: store, cache: cache, now: time.Now}
}

// NewEngineAt creates a dashboard engine with an injected clock.
func NewEngineAt(store service.Storage, cache service.ResultCache, now func() time.Time) *Engine {
	return &Engine{store: store, cache: cache, now: now}
}

// Dashboard computes the payload for one user and filter combination.
// A cache hit returns the memoized payload without touching the store.
// Internal transfers are excluded from every figure.
func (e *Engine) Dashboard(ctx context.Context, userID int64, f Filters) (*Payload, error) {
	key := cacheKey(userID, f)
	if cached, ok := e.cache.Get(key); ok {
		if payload, ok := cached.(*Payload); ok {
			slog.Debug("dashboard cache hit", "key", key)
			return payload, nil
		}
	}

	transactions, err := e.store.ListTransactions(ctx, service.TransactionFilter{
		UserID:     userID,
		CategoryID: f.CategoryID,
		Search:     f.Search,
	})
	if err != nil {
		return nil, err
	}

	categoryNames, err := e.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	// Money moved between the user's own accounts is neither income nor
	// expense.
	window := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if categoryNames[txn.CategoryID] == model.InternalTransferCategory {
			continue
		}
		window = append(window, txn)
	}

	now := e.now()
	filtered := filterByPeriod(window, f)

	payload := &Payload{
		History:          e.history(window, now),
		Categories:       breakdownByCategory(filtered, categoryNames, model.TypeExit),
		IncomeCategories: breakdownByCategory(filtered, categoryNames, model.TypeEntry),
		TopMerchants:     topByDescription(filtered, model.TypeExit),
		TopIncomeSources: topByDescription(filtered, model.TypeEntry),
		Summary:          e.summary(filtered, f),
	}
	payload.Projection = projection(window, payload.Categories, categoryNames, f, now)

	e.cache.Set(key, payload)
	return payload, nil
}

func (e *Engine) categoryNames(ctx context.Context) (map[int64]string, error) {
	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}

// history buckets the last 6 calendar months ending at the current one,
// zero-filled and oldest first, independent of the period filter.
func (e *Engine) history(window []model.Transaction, now time.Time) []HistoryPoint {
	points := make([]HistoryPoint, historyMonths)
	index := make(map[string]*HistoryPoint, historyMonths)

	for i := 0; i < historyMonths; i++ {
		month := time.Date(now.Year(), now.Month()-time.Month(historyMonths-1-i), 1, 0, 0, 0, 0, now.Location())
		key := month.Format("2006-01")
		points[i] = HistoryPoint{Date: key}
		index[key] = &points[i]
	}

	for _, txn := range window {
		point, ok := index[txn.Date.Format("2006-01")]
		if !ok {
			continue
		}
		if txn.Type == model.TypeEntry {
			point.Income = point.Income.Add(txn.Value)
		} else {
			point.Expense = point.Expense.Add(txn.Value.Abs())
		}
	}

	return points
}

// filterByPeriod applies the month/year policy: both select an exact
// calendar month, month alone matches across years, year alone the whole
// year, and no filter means all-time.
func filterByPeriod(window []model.Transaction, f Filters) []model.Transaction {
	if f.Month == 0 && f.Year == 0 {
		return window
	}

	filtered := make([]model.Transaction, 0, len(window))
	for _, txn := range window {
		year, month := txn.Date.Year(), int(txn.Date.Month())
		switch {
		case f.Month > 0 && f.Year > 0:
			if year == f.Year && month == f.Month {
				filtered = append(filtered, txn)
			}
		case f.Month > 0:
			if month == f.Month {
				filtered = append(filtered, txn)
			}
		default:
			if year == f.Year {
				filtered = append(filtered, txn)
			}
		}
	}
	return filtered
}

func breakdownByCategory(filtered []model.Transaction, names map[int64]string, txnType model.TransactionType) []BreakdownItem {
	sums := make(map[string]decimal.Decimal)
	for _, txn := range filtered {
		if txn.Type != txnType {
			continue
		}
		name, ok := names[txn.CategoryID]
		if !ok || name == "" {
			name = model.UncategorizedLabel
		}
		sums[name] = sums[name].Add(txn.Value.Abs())
	}
	return sortedBreakdown(sums, 0)
}

func topByDescription(filtered []model.Transaction, txnType model.TransactionType) []BreakdownItem {
	sums := make(map[string]decimal.Decimal)
	for _, txn := range filtered {
		if txn.Type != txnType {
			continue
		}
		name := strings.TrimSpace(txn.Description)
		sums[name] = sums[name].Add(txn.Value.Abs())
	}
	return sortedBreakdown(sums, topMerchantCount)
}

// sortedBreakdown orders sums descending (name ascending on ties, so
// output is deterministic) and truncates to limit when limit > 0.
func sortedBreakdown(sums map[string]decimal.Decimal, limit int) []BreakdownItem {
	items := make([]BreakdownItem, 0, len(sums))
	for name, value := range sums {
		items = append(items, BreakdownItem{Name: name, Value: value})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Value.Equal(items[j].Value) {
			return items[i].Value.GreaterThan(items[j].Value)
		}
		return items[i].Name < items[j].Name
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (e *Engine) summary(filtered []model.Transaction, f Filters) Summary {
	var totalIncome, totalExpense decimal.Decimal
	var biggest *BiggestExpense

	for _, txn := range filtered {
		if txn.Type == model.TypeEntry {
			totalIncome = totalIncome.Add(txn.Value)
			continue
		}
		abs := txn.Value.Abs()
		totalExpense = totalExpense.Add(abs)
		if biggest == nil || abs.GreaterThan(biggest.Value) {
			biggest = &BiggestExpense{
				Description: txn.Description,
				Value:       abs,
				Date:        txn.Date,
			}
		}
	}

	days := periodDays(filtered, f)

	return Summary{
		TotalIncome:      totalIncome,
		TotalExpense:     totalExpense,
		Balance:          totalIncome.Sub(totalExpense),
		DailyAverage:     totalExpense.DivRound(decimal.NewFromInt(int64(days)), 2),
		BiggestExpense:   biggest,
		TransactionCount: len(filtered),
	}
}

// periodDays resolves the daily-average divisor: calendar days of the
// selected month, else the inclusive day span of the filtered set (at
// least 1), else 30.
func periodDays(filtered []model.Transaction, f Filters) int {
	if f.Month > 0 && f.Year > 0 {
		return time.Date(f.Year, time.Month(f.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	}

	if len(filtered) == 0 {
		return defaultPeriodDays
	}

	earliest, latest := filtered[0].Date, filtered[0].Date
	for _, txn := range filtered[1:] {
		if txn.Date.Before(earliest) {
			earliest = txn.Date
		}
		if txn.Date.After(latest) {
			latest = txn.Date
		}
	}

	days := daySpan(earliest, latest)
	if days < 1 {
		days = 1
	}
	return days
}

// daySpan counts inclusive calendar days between two timestamps.
func daySpan(earliest, latest time.Time) int {
	start := time.Date(earliest.Year(), earliest.Month(), earliest.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(latest.Year(), latest.Month(), latest.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}

// projection benchmarks the top current expense categories against the
// average of the 3 full calendar months before the target month.
// Spend with no prior history gets a zero average and flags warning.
func projection(window []model.Transaction, breakdown []BreakdownItem, names map[int64]string, f Filters, now time.Time) []ProjectionItem {
	targetYear, targetMonth := f.Year, f.Month
	if targetMonth == 0 {
		targetMonth = int(now.Month())
	}
	if targetYear == 0 {
		targetYear = now.Year()
	}

	// Compare by calendar month, not instants, so local timestamps near
	// month boundaries land in the right bucket.
	targetIndex := targetYear*12 + targetMonth - 1

	priorSums := make(map[string]decimal.Decimal)
	for _, txn := range window {
		if txn.Type != model.TypeExit {
			continue
		}
		monthIndex := txn.Date.Year()*12 + int(txn.Date.Month()) - 1
		if monthIndex < targetIndex-projectionMonths || monthIndex >= targetIndex {
			continue
		}
		// Prior sums key on the same names the breakdown uses.
		name, ok := names[txn.CategoryID]
		if !ok || name == "" {
			name = model.UncategorizedLabel
		}
		priorSums[name] = priorSums[name].Add(txn.Value.Abs())
	}

	items := make([]ProjectionItem, 0, projectionTopN)
	for i, item := range breakdown {
		if i >= projectionTopN {
			break
		}
		average := priorSums[item.Name].DivRound(decimal.NewFromInt(projectionMonths), 2)
		status := StatusGood
		if item.Value.GreaterThan(average) {
			status = StatusWarning
		}
		items = append(items, ProjectionItem{
			Name:    item.Name,
			Current: item.Value,
			Average: average,
			Status:  status,
		})
	}
	return items
}

// cacheKey mirrors the write-side invalidation granularity: any value
// distinguishing two payloads must appear here.
func cacheKey(userID int64, f Filters) string {
	return fmt.Sprintf("dashboard_%d_%s_%s_%s_%s",
		userID,
		orAll(f.Month),
		orAll(f.Year),
		orAll64(f.CategoryID),
		orAllString(f.Search))
}

func orAll(v int) string {
	if v == 0 {
		return "all"
	}
	return fmt.Sprintf("%d", v)
}

func orAll64(v int64) string {
	if v == 0 {
		return "all"
	}
	return fmt.Sprintf("%d", v)
}

func orAllString(v string) string {
	if v == "" {
		return "all"
	}
	return v
}
