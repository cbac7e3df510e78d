package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spending record owned by exactly one user. The amount
// is a fixed-point decimal; it is never held as a binary float.
//
// CategoryName and CategoryColor are denormalized from the category at read
// time. They are nil when the expense has no category or the category was
// deleted since.
type Expense struct {
	ID            int64
	UserID        int64
	Title         string
	Amount        decimal.Decimal
	Date          time.Time
	CategoryID    *int64
	CategoryName  *string
	CategoryColor *string
	Notes         *string
	ReceiptURL    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExpensePatch enumerates the updatable fields of an expense. Nil fields are
// left untouched; the patch is applied with a single parameterized statement.
type ExpensePatch struct {
	Title      *string
	Amount     *decimal.Decimal
	Date       *time.Time
	CategoryID *int64
	Notes      *string
	ReceiptURL *string
}

// IsZero reports whether the patch changes nothing.
func (p ExpensePatch) IsZero() bool {
	return p.Title == nil && p.Amount == nil && p.Date == nil &&
		p.CategoryID == nil && p.Notes == nil && p.ReceiptURL == nil
}

// ExpenseFilter narrows a listing to matching expenses. All fields are
// optional; the zero filter matches every expense of the user.
type ExpenseFilter struct {
	TimeFilter  TimeFilter
	StartDate   *time.Time
	EndDate     *time.Time
	CategoryIDs []int64
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	SearchQuery string
}
