package domain

import "github.com/shopspring/decimal"

// Expenses whose category was deleted surface in a summary under this
// synthetic entry so the per-category amounts always add up to the total.
const (
	UncategorizedID    int64 = 0
	UncategorizedName        = "Uncategorized"
	UncategorizedColor       = "#AAAAAA"
)

// CategorySummary aggregates one category of a user's spend within a window.
type CategorySummary struct {
	CategoryID int64
	Name       string
	Color      string
	Amount     decimal.Decimal
	Count      int
	Percentage float64
}

// Summary is the aggregate view of a user's spending over a time window.
type Summary struct {
	Total          decimal.Decimal
	ByCategory     []CategorySummary
	RecentExpenses []Expense
}
