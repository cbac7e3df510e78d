package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/domain"
	"spendtrack/internal/repository"
)

const (
	// DefaultPageSize applies when the caller omits or zeroes the page size.
	DefaultPageSize = 10
	// MaxPageSize caps a single listing page.
	MaxPageSize = 100

	recentExpenseLimit = 5
)

// CreateExpenseInput carries the fields required to record an expense.
// CategoryID must be present but its existence is not validated here; it is
// only resolved for display enrichment, and the store's foreign key keeps
// references consistent.
type CreateExpenseInput struct {
	Title      string
	Amount     decimal.Decimal
	Date       time.Time
	CategoryID int64
	Notes      *string
	ReceiptURL *string
}

// ExpenseService coordinates expense queries, aggregation and mutation for a
// single authenticated user, passed explicitly on every call.
type ExpenseService interface {
	// List returns one page of matching expenses plus the total match count
	// before pagination. page is 1-based; values below 1 clamp to 1, and
	// pageSize clamps into [1, MaxPageSize] with DefaultPageSize for zero.
	List(ctx context.Context, userID int64, filter domain.ExpenseFilter, page, pageSize int) ([]domain.Expense, int, error)
	Get(ctx context.Context, userID, id int64) (*domain.Expense, error)
	Create(ctx context.Context, userID int64, input CreateExpenseInput) (*domain.Expense, error)
	Update(ctx context.Context, userID, id int64, patch domain.ExpensePatch) (*domain.Expense, error)
	Delete(ctx context.Context, userID, id int64) error
	Summarize(ctx context.Context, userID int64, timeFilter domain.TimeFilter, start, end *time.Time) (*domain.Summary, error)
}

type expenseService struct {
	expenses repository.ExpenseRepository
}

func NewExpenseService(expenses repository.ExpenseRepository) ExpenseService {
	return &expenseService{expenses: expenses}
}

func (s *expenseService) List(ctx context.Context, userID int64, filter domain.ExpenseFilter, page, pageSize int) ([]domain.Expense, int, error) {
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	offset := (page - 1) * pageSize
	return s.expenses.List(ctx, userID, filter, pageSize, offset)
}

func (s *expenseService) Get(ctx context.Context, userID, id int64) (*domain.Expense, error) {
	expense, err := s.expenses.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: expense", ErrNotFound)
		}
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) Create(ctx context.Context, userID int64, input CreateExpenseInput) (*domain.Expense, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if input.CategoryID == 0 {
		return nil, fmt.Errorf("%w: categoryId is required", ErrValidation)
	}

	categoryID := input.CategoryID
	expense := &domain.Expense{
		UserID:     userID,
		Title:      strings.TrimSpace(input.Title),
		Amount:     input.Amount,
		Date:       input.Date,
		CategoryID: &categoryID,
		Notes:      input.Notes,
		ReceiptURL: input.ReceiptURL,
	}
	if _, err := s.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) Update(ctx context.Context, userID, id int64, patch domain.ExpensePatch) (*domain.Expense, error) {
	if patch.IsZero() {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if patch.Amount != nil {
		if err := validateAmount(*patch.Amount); err != nil {
			return nil, err
		}
	}

	expense, err := s.expenses.Update(ctx, id, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: expense", ErrNotFound)
		}
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.expenses.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: expense", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *expenseService) Summarize(ctx context.Context, userID int64, timeFilter domain.TimeFilter, start, end *time.Time) (*domain.Summary, error) {
	window := domain.ResolveDateRange(timeFilter, start, end, time.Now())

	summary, err := s.expenses.Summarize(ctx, userID, window)
	if err != nil {
		return nil, err
	}

	for i := range summary.ByCategory {
		summary.ByCategory[i].Percentage = percentage(summary.ByCategory[i].Amount, summary.Total)
	}

	// Recent expenses reuse the listing path so both views share one
	// predicate set and ordering.
	recent, _, err := s.expenses.List(ctx, userID, domain.ExpenseFilter{
		TimeFilter: timeFilter,
		StartDate:  start,
		EndDate:    end,
	}, recentExpenseLimit, 0)
	if err != nil {
		return nil, err
	}
	summary.RecentExpenses = recent

	return summary, nil
}

func percentage(amount, total decimal.Decimal) float64 {
	if total.Sign() <= 0 {
		return 0
	}
	pct, _ := amount.Div(total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount must have at most two decimal places", ErrValidation)
	}
	return nil
}

func validateFilter(filter domain.ExpenseFilter) error {
	if filter.MinAmount != nil && !filter.MinAmount.Equal(filter.MinAmount.Round(2)) {
		return fmt.Errorf("%w: minAmount must have at most two decimal places", ErrValidation)
	}
	if filter.MaxAmount != nil && !filter.MaxAmount.Equal(filter.MaxAmount.Round(2)) {
		return fmt.Errorf("%w: maxAmount must have at most two decimal places", ErrValidation)
	}
	return nil
}
