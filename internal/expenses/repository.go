package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook/stockbook/internal/shared"
)

// Repository persists the expense ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateExpense inserts an expense category.
func (r *Repository) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses (title, amount, created_at, updated_at)
VALUES ($1, $2, $3, $3) RETURNING id`, e.Title, e.Amount, now).Scan(&e.ID)
	if err != nil {
		return Expense{}, err
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	return e, nil
}

// GetExpense fetches an expense.
func (r *Repository) GetExpense(ctx context.Context, id int64) (Expense, error) {
	var e Expense
	err := r.pool.QueryRow(ctx, `SELECT id, title, amount, created_at, updated_at FROM expenses WHERE id = $1`, id).
		Scan(&e.ID, &e.Title, &e.Amount, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, fmt.Errorf("%w: expense", shared.ErrNotFound)
	}
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}

// ListExpenses lists expenses, optionally filtered by title search.
func (r *Repository) ListExpenses(ctx context.Context, filter ListFilter) ([]Expense, int, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	search := "%" + filter.Search + "%"

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE ($1 = '%%' OR title ILIKE $1)`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, title, amount, created_at, updated_at FROM expenses
WHERE ($1 = '%%' OR title ILIKE $1) ORDER BY title LIMIT $2 OFFSET $3`, search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, e)
	}
	return expenses, total, rows.Err()
}

// UpdateExpense replaces expense fields.
func (r *Repository) UpdateExpense(ctx context.Context, id int64, e Expense) error {
	tag, err := r.pool.Exec(ctx, `UPDATE expenses SET title = $1, amount = $2, updated_at = $3 WHERE id = $4`,
		e.Title, e.Amount, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense", shared.ErrNotFound)
	}
	return nil
}

// DeleteExpense removes an expense. Its transactions cascade.
func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense", shared.ErrNotFound)
	}
	return nil
}

// InsertTransaction appends a posting to an expense.
func (r *Repository) InsertTransaction(ctx context.Context, t ExpenseTransaction) (ExpenseTransaction, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO expense_transactions (expense_id, comment, occurred_at, created_at)
VALUES ($1, $2, $3, $4) RETURNING id`, t.ExpenseID, t.Comment, t.OccurredAt, now).Scan(&t.ID)
	if err != nil {
		if shared.IsForeignKeyViolation(err) {
			return ExpenseTransaction{}, fmt.Errorf("%w: expense", shared.ErrNotFound)
		}
		return ExpenseTransaction{}, err
	}
	t.CreatedAt = now
	return t, nil
}

// ListTransactions returns the postings of one expense, oldest first.
func (r *Repository) ListTransactions(ctx context.Context, expenseID int64) ([]ExpenseTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, expense_id, comment, occurred_at, created_at
FROM expense_transactions WHERE expense_id = $1 ORDER BY occurred_at, id`, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []ExpenseTransaction
	for rows.Next() {
		var t ExpenseTransaction
		if err := rows.Scan(&t.ID, &t.ExpenseID, &t.Comment, &t.OccurredAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
