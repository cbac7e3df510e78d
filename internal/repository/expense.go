package repository

import (
	"context"

	"spendtrack/internal/domain"
)

// ExpenseRepository exposes persistence operations for expense records. All
// owner-scoped operations treat a row belonging to another user exactly like
// a missing row.
type ExpenseRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, expense *domain.Expense) (int64, error)
	Get(ctx context.Context, id, userID int64) (*domain.Expense, error)
	// List returns one page of enriched expenses ordered by occurrence date
	// descending (id descending on ties), together with the count of all
	// rows matching the same filter before pagination.
	List(ctx context.Context, userID int64, filter domain.ExpenseFilter, limit, offset int) ([]domain.Expense, int, error)
	Update(ctx context.Context, id, userID int64, patch domain.ExpensePatch) (*domain.Expense, error)
	Delete(ctx context.Context, id, userID int64) error
	// Summarize computes the total and the per-category breakdown for the
	// window. Recent expenses are not included; callers assemble them via
	// List so both views share one predicate set.
	Summarize(ctx context.Context, userID int64, window domain.DateRange) (*domain.Summary, error)
}
