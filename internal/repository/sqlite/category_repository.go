package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendtrack/internal/domain"
	"spendtrack/internal/repository"
)

const createCategoriesTable = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL
);
`

// defaultCategories is the seed set every fresh database starts with.
var defaultCategories = []domain.Category{
	{Name: "Food", Color: "#FF5733"},
	{Name: "Transportation", Color: "#33A8FF"},
	{Name: "Housing", Color: "#33FF57"},
	{Name: "Entertainment", Color: "#F033FF"},
	{Name: "Utilities", Color: "#FFFF33"},
	{Name: "Healthcare", Color: "#FF3333"},
	{Name: "Shopping", Color: "#33FFF0"},
	{Name: "Education", Color: "#8033FF"},
	{Name: "Travel", Color: "#FF8033"},
	{Name: "Others", Color: "#AAAAAA"},
}

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCategoriesTable); err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Seed(ctx context.Context) error {
	for _, c := range defaultCategories {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name, color) VALUES (?, ?)`,
			c.Name, c.Color,
		); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	return nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, color FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, color) VALUES (?, ?)`,
		category.Name, category.Color,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert category: %w", repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category last insert id: %w", err)
	}
	category.ID = id
	return id, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id int64, name, color *string) (*domain.Category, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE categories
SET name  = COALESCE(?, name),
    color = COALESCE(?, color)
WHERE id = ?`,
		name,
		color,
		id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update category: %w", repository.ErrDuplicate)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("category update rows affected: %w", err)
	}
	if aff == 0 {
		return nil, fmt.Errorf("update category: %w", repository.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the category unless any expense still references it. The
// reference check and the delete run in one transaction so a concurrent
// insert cannot slip between them.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE category_id = ?`, id,
	).Scan(&count); err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("category has %d expenses: %w", count, repository.ErrInUse)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("category delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("delete category: %w", repository.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit category delete: %w", err)
	}
	return nil
}

func scanCategory(row interface {
	Scan(dest ...any) error
}) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, nil
}
