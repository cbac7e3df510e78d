package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/domain"
	"spendtrack/internal/repository"
)

const createExpensesTable = `
CREATE TABLE IF NOT EXISTS expenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	amount_cents INTEGER NOT NULL,
	date DATETIME NOT NULL,
	category_id INTEGER NULL REFERENCES categories(id) ON DELETE SET NULL,
	notes TEXT NULL,
	receipt_url TEXT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// Columns selected for an enriched expense row. Category name and color come
// from a left join so a null or deleted category yields nil fields instead of
// an error.
const expenseColumns = `
e.id, e.user_id, e.title, e.amount_cents, e.date, e.category_id,
c.name, c.color, e.notes, e.receipt_url, e.created_at, e.updated_at`

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) repository.ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createExpensesTable); err != nil {
		return fmt.Errorf("create expenses table: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (int64, error) {
	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO expenses (user_id, title, amount_cents, date, category_id, notes, receipt_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.UserID,
		expense.Title,
		centsFromDecimal(expense.Amount),
		expense.Date.UTC(),
		expense.CategoryID,
		expense.Notes,
		expense.ReceiptURL,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense last insert id: %w", err)
	}

	created, err := scanExpense(tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+`
FROM expenses e
LEFT JOIN categories c ON e.category_id = c.id
WHERE e.id = ?`, id))
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit expense insert: %w", err)
	}
	*expense = *created
	return id, nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id, userID int64) (*domain.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+`
FROM expenses e
LEFT JOIN categories c ON e.category_id = c.id
WHERE e.id = ? AND e.user_id = ?`,
		id, userID)
	return scanExpense(row)
}

func (r *ExpenseRepository) List(ctx context.Context, userID int64, filter domain.ExpenseFilter, limit, offset int) ([]domain.Expense, int, error) {
	where, args := filterConditions(userID, filter, time.Now())

	// The count runs over the exact predicate set used for the page query so
	// total/pageSize stays a consistent page count.
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses e WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := `SELECT ` + expenseColumns + `
FROM expenses e
LEFT JOIN categories c ON e.category_id = c.id
WHERE ` + where + `
ORDER BY e.date DESC, e.id DESC
LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, total, rows.Err()
}

func (r *ExpenseRepository) Update(ctx context.Context, id, userID int64, patch domain.ExpensePatch) (*domain.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var amountCents *int64
	if patch.Amount != nil {
		v := centsFromDecimal(*patch.Amount)
		amountCents = &v
	}
	var date *time.Time
	if patch.Date != nil {
		v := patch.Date.UTC()
		date = &v
	}

	// Fixed field set applied in one parameterized statement; nil keeps the
	// stored value.
	res, err := tx.ExecContext(ctx, `
UPDATE expenses
SET title        = COALESCE(?, title),
    amount_cents = COALESCE(?, amount_cents),
    date         = COALESCE(?, date),
    category_id  = COALESCE(?, category_id),
    notes        = COALESCE(?, notes),
    receipt_url  = COALESCE(?, receipt_url),
    updated_at   = ?
WHERE id = ? AND user_id = ?`,
		patch.Title,
		amountCents,
		date,
		patch.CategoryID,
		patch.Notes,
		patch.ReceiptURL,
		time.Now().UTC(),
		id,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("expense update rows affected: %w", err)
	}
	if aff == 0 {
		return nil, fmt.Errorf("update expense: %w", repository.ErrNotFound)
	}

	updated, err := scanExpense(tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+`
FROM expenses e
LEFT JOIN categories c ON e.category_id = c.id
WHERE e.id = ? AND e.user_id = ?`, id, userID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit expense update: %w", err)
	}
	return updated, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("expense delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("delete expense: %w", repository.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expense delete: %w", err)
	}
	return nil
}

// Summarize computes the window total and a per-category breakdown covering
// every category, including ones the user never spent in. Spend whose
// category was deleted is appended as a synthetic Uncategorized entry so the
// breakdown always sums to the total. Percentages are left at zero for the
// service layer to fill in.
func (r *ExpenseRepository) Summarize(ctx context.Context, userID int64, window domain.DateRange) (*domain.Summary, error) {
	dateWhere, dateArgs := dateConditions(window)

	var totalCents int64
	totalQuery := `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses e WHERE e.user_id = ?` + dateWhere
	if err := r.db.QueryRowContext(ctx, totalQuery, append([]any{userID}, dateArgs...)...).Scan(&totalCents); err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}

	// Left join from categories keeps zero-spend categories in the result.
	byCategoryQuery := `
SELECT c.id, c.name, c.color, COALESCE(SUM(e.amount_cents), 0), COUNT(e.id)
FROM categories c
LEFT JOIN expenses e ON e.category_id = c.id AND e.user_id = ?` + dateWhere + `
GROUP BY c.id, c.name, c.color`
	rows, err := r.db.QueryContext(ctx, byCategoryQuery, append([]any{userID}, dateArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("query category breakdown: %w", err)
	}
	defer rows.Close()

	var byCategory []domain.CategorySummary
	for rows.Next() {
		var (
			entry domain.CategorySummary
			cents int64
		)
		if err := rows.Scan(&entry.CategoryID, &entry.Name, &entry.Color, &cents, &entry.Count); err != nil {
			return nil, fmt.Errorf("scan category breakdown: %w", err)
		}
		entry.Amount = decimalFromCents(cents)
		byCategory = append(byCategory, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category breakdown: %w", err)
	}

	var (
		uncatCents int64
		uncatCount int
	)
	uncatQuery := `SELECT COALESCE(SUM(amount_cents), 0), COUNT(id) FROM expenses e WHERE e.user_id = ? AND e.category_id IS NULL` + dateWhere
	if err := r.db.QueryRowContext(ctx, uncatQuery, append([]any{userID}, dateArgs...)...).Scan(&uncatCents, &uncatCount); err != nil {
		return nil, fmt.Errorf("sum uncategorized expenses: %w", err)
	}
	if uncatCount > 0 {
		byCategory = append(byCategory, domain.CategorySummary{
			CategoryID: domain.UncategorizedID,
			Name:       domain.UncategorizedName,
			Color:      domain.UncategorizedColor,
			Amount:     decimalFromCents(uncatCents),
			Count:      uncatCount,
		})
	}

	// amount descending, category id ascending on ties
	sort.SliceStable(byCategory, func(i, j int) bool {
		cmp := byCategory[i].Amount.Cmp(byCategory[j].Amount)
		if cmp != 0 {
			return cmp > 0
		}
		return byCategory[i].CategoryID < byCategory[j].CategoryID
	})

	return &domain.Summary{
		Total:      decimalFromCents(totalCents),
		ByCategory: byCategory,
	}, nil
}

// filterConditions renders a filter as an AND-joined predicate list plus
// arguments. The predicates are a fixed enumeration; nothing from the filter
// is ever spliced into the query text.
func filterConditions(userID int64, filter domain.ExpenseFilter, now time.Time) (string, []any) {
	conds := []string{"e.user_id = ?"}
	args := []any{userID}

	window := domain.ResolveDateRange(filter.TimeFilter, filter.StartDate, filter.EndDate, now)
	if window.Start != nil {
		conds = append(conds, "e.date >= ?")
		args = append(args, window.Start.UTC())
	}
	if window.End != nil {
		conds = append(conds, "e.date < ?")
		args = append(args, window.End.UTC())
	}

	if len(filter.CategoryIDs) > 0 {
		placeholders := make([]string, len(filter.CategoryIDs))
		for i, id := range filter.CategoryIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, fmt.Sprintf("e.category_id IN (%s)", strings.Join(placeholders, ",")))
	}

	if filter.MinAmount != nil {
		conds = append(conds, "e.amount_cents >= ?")
		args = append(args, centsFromDecimal(*filter.MinAmount))
	}
	if filter.MaxAmount != nil {
		conds = append(conds, "e.amount_cents <= ?")
		args = append(args, centsFromDecimal(*filter.MaxAmount))
	}

	if q := strings.TrimSpace(filter.SearchQuery); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		conds = append(conds, `(LOWER(e.title) LIKE ? ESCAPE '\' OR LOWER(IFNULL(e.notes, '')) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	return strings.Join(conds, " AND "), args
}

// dateConditions renders just the date window, for queries whose remaining
// predicates are fixed.
func dateConditions(window domain.DateRange) (string, []any) {
	var (
		where string
		args  []any
	)
	if window.Start != nil {
		where += " AND e.date >= ?"
		args = append(args, window.Start.UTC())
	}
	if window.End != nil {
		where += " AND e.date < ?"
		args = append(args, window.End.UTC())
	}
	return where, args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func scanExpense(scanner interface {
	Scan(dest ...any) error
}) (*domain.Expense, error) {
	var (
		e             domain.Expense
		cents         int64
		categoryID    sql.NullInt64
		categoryName  sql.NullString
		categoryColor sql.NullString
		notes         sql.NullString
		receiptURL    sql.NullString
	)
	if err := scanner.Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&cents,
		&e.Date,
		&categoryID,
		&categoryName,
		&categoryColor,
		&notes,
		&receiptURL,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("expense: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}

	e.Amount = decimalFromCents(cents)
	if categoryID.Valid {
		e.CategoryID = &categoryID.Int64
	}
	if categoryName.Valid {
		e.CategoryName = &categoryName.String
	}
	if categoryColor.Valid {
		e.CategoryColor = &categoryColor.String
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	if receiptURL.Valid {
		e.ReceiptURL = &receiptURL.String
	}
	return &e, nil
}

// Amounts are stored as integer cents so sums and comparisons stay exact in
// SQL. Callers validate that amounts carry at most two decimal places.
func centsFromDecimal(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func decimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
