package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/platform/db"
	"github.com/stockbook/stockbook/internal/shared"
)

// Repository persists payments and debts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// GetDebt fetches the debt row of one transaction.
func (r *Repository) GetDebt(ctx context.Context, transactionID int64) (Debt, error) {
	var d Debt
	err := r.pool.QueryRow(ctx, `SELECT id, transaction_id, client_id, amount_due, is_paid, created_at, updated_at
FROM debts WHERE transaction_id = $1`, transactionID).
		Scan(&d.ID, &d.TransactionID, &d.ClientID, &d.AmountDue, &d.IsPaid, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Debt{}, fmt.Errorf("%w: debt", shared.ErrNotFound)
	}
	if err != nil {
		return Debt{}, err
	}
	return d, nil
}

// ListDebts returns debts newest first, optionally only unpaid ones.
func (r *Repository) ListDebts(ctx context.Context, unpaidOnly bool, page shared.Pagination) ([]Debt, int, error) {
	where := ` WHERE ($1 = false OR is_paid = false)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM debts`+where, unpaidOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, transaction_id, client_id, amount_due, is_paid, created_at, updated_at
FROM debts`+where+` ORDER BY updated_at DESC LIMIT $2 OFFSET $3`, unpaidOnly, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var debts []Debt
	for rows.Next() {
		var d Debt
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.ClientID, &d.AmountDue, &d.IsPaid, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		debts = append(debts, d)
	}
	return debts, total, rows.Err()
}

// ListPayments returns the payments of one transaction in posting order.
func (r *Repository) ListPayments(ctx context.Context, transactionID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, transaction_id, amount, method, paid_at, created_at
FROM payments WHERE transaction_id = $1 ORDER BY id`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.Amount, &p.Method, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type txRepo struct {
	tx pgx.Tx
}

func (t *txRepo) GetTransactionClient(ctx context.Context, transactionID int64) (int64, error) {
	var clientID int64
	err := t.tx.QueryRow(ctx, `SELECT client_id FROM sales_transactions WHERE id = $1`, transactionID).Scan(&clientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: sales transaction", shared.ErrNotFound)
	}
	return clientID, err
}

func (t *txRepo) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	now := time.Now().UTC()
	err := t.tx.QueryRow(ctx, `INSERT INTO payments (transaction_id, amount, method, paid_at, created_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.TransactionID, p.Amount, p.Method, p.PaidAt, now).Scan(&p.ID)
	if err != nil {
		if shared.IsForeignKeyViolation(err) {
			return Payment{}, fmt.Errorf("%w: sales transaction", shared.ErrNotFound)
		}
		return Payment{}, err
	}
	p.CreatedAt = now
	return p, nil
}

func (t *txRepo) SumLineValues(ctx context.Context, transactionID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(SUM(value), 0) FROM sales_lines WHERE transaction_id = $1`, transactionID).Scan(&total)
	return total, err
}

func (t *txRepo) SumPayments(ctx context.Context, transactionID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE transaction_id = $1`, transactionID).Scan(&total)
	return total, err
}

func (t *txRepo) UpsertDebt(ctx context.Context, debt Debt) error {
	now := time.Now().UTC()
	_, err := t.tx.Exec(ctx, `INSERT INTO debts (transaction_id, client_id, amount_due, is_paid, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (transaction_id) DO UPDATE SET amount_due = EXCLUDED.amount_due, is_paid = EXCLUDED.is_paid, updated_at = EXCLUDED.updated_at`,
		debt.TransactionID, debt.ClientID, debt.AmountDue, debt.IsPaid, now)
	return err
}
