package repository

import (
	"context"

	"spendtrack/internal/domain"
)

// CategoryRepository defines persistence operations for shared categories.
type CategoryRepository interface {
	Init(ctx context.Context) error
	// Seed idempotently inserts the default category set.
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (int64, error)
	// Update applies the non-nil fields. Returns ErrNotFound for an unknown
	// id and ErrDuplicate when the new name is already taken.
	Update(ctx context.Context, id int64, name, color *string) (*domain.Category, error)
	// Delete fails with ErrInUse while any expense references the category.
	Delete(ctx context.Context, id int64) error
}
