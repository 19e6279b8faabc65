package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// Filters narrow the dashboard window. Zero values mean "all".
type Filters struct {
	Search     string
	CategoryID int64
	Month      int // 1-12
	Year       int
}

// HistoryPoint is one month of the income/expense trend.
type HistoryPoint struct {
	Date    string          `json:"date"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// BreakdownItem is a named absolute sum, used for category and merchant
// rankings.
type BreakdownItem struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// BiggestExpense is the single largest expense of the filtered window.
type BiggestExpense struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

// Summary holds the KPI cards.
type Summary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	Balance          decimal.Decimal `json:"balance"`
	DailyAverage     decimal.Decimal `json:"dailyAverage"`
	BiggestExpense   *BiggestExpense `json:"biggestExpense"`
	TransactionCount int             `json:"transactionCount"`
}

// Projection statuses.
const (
	StatusWarning = "warning"
	StatusGood    = "good"
)

// ProjectionItem compares a category's current spend against its
// trailing 3-month average.
type ProjectionItem struct {
	Name    string          `json:"name"`
	Status  string          `json:"status"`
	Current decimal.Decimal `json:"current"`
	Average decimal.Decimal `json:"average"`
}

// Payload is the full dashboard response.
type Payload struct {
	Summary          Summary          `json:"summary"`
	History          []HistoryPoint   `json:"history"`
	Categories       []BreakdownItem  `json:"categories"`
	IncomeCategories []BreakdownItem  `json:"incomeCategories"`
	TopMerchants     []BreakdownItem  `json:"topMerchants"`
	TopIncomeSources []BreakdownItem  `json:"topIncomeSources"`
	Projection       []ProjectionItem `json:"projection"`
}
