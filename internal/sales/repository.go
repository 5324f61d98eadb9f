package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/billing"
	"github.com/stockbook/stockbook/internal/inventory"
	"github.com/stockbook/stockbook/internal/platform/db"
	"github.com/stockbook/stockbook/internal/shared"
)

// Repository persists sales data in PostgreSQL.
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
		return fn(ctx, &txRepo{tx: tx, ledger: inventory.NewTxStore(tx)})
	})
}

// InsertTransaction creates a sales header, mapping a slug uniqueness
// violation to ErrSlugTaken so the service can retry derivation.
func (r *Repository) InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO sales_transactions (client_id, slug, created_at, updated_at)
VALUES ($1, $2, $3, $3) RETURNING id`, txn.ClientID, txn.Slug, now).Scan(&txn.ID)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return Transaction{}, ErrSlugTaken
		}
		if shared.IsForeignKeyViolation(err) {
			return Transaction{}, fmt.Errorf("%w: client", shared.ErrNotFound)
		}
		return Transaction{}, err
	}
	txn.CreatedAt = now
	txn.UpdatedAt = now
	return txn, nil
}

// GetTransaction fetches a sales header.
func (r *Repository) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	var txn Transaction
	err := r.pool.QueryRow(ctx, `SELECT id, client_id, slug, created_at, updated_at FROM sales_transactions WHERE id = $1`, id).
		Scan(&txn.ID, &txn.ClientID, &txn.Slug, &txn.CreatedAt, &txn.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, fmt.Errorf("%w: sales transaction", shared.ErrNotFound)
	}
	if err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// ListTransactions returns headers matching filter, newest first.
func (r *Repository) ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, int, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	where := ` WHERE ($1 = 0 OR client_id = $1) AND ($2 = '' OR slug = $2)
AND ($3::timestamptz IS NULL OR created_at >= $3) AND ($4::timestamptz IS NULL OR created_at < $4)`
	args := []any{filter.ClientID, filter.Slug, nullableTime(filter.From), nullableTime(filter.To)}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales_transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, client_id, slug, created_at, updated_at FROM sales_transactions`+where+
		` ORDER BY created_at DESC LIMIT $5 OFFSET $6`, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var txn Transaction
		if err := rows.Scan(&txn.ID, &txn.ClientID, &txn.Slug, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
			return nil, 0, err
		}
		txns = append(txns, txn)
	}
	return txns, total, rows.Err()
}

// ListLines returns the lines of one transaction in posting order.
func (r *Repository) ListLines(ctx context.Context, transactionID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, transaction_id, product_id, quantity, price, value, created_at
FROM sales_lines WHERE transaction_id = $1 ORDER BY id`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.ProductID, &l.Quantity, &l.Price, &l.Value, &l.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type txRepo struct {
	tx     pgx.Tx
	ledger *inventory.TxStore
}

func (t *txRepo) Ledger() inventory.LedgerStore { return t.ledger }

func (t *txRepo) InsertLine(ctx context.Context, line Line) (Line, error) {
	now := time.Now().UTC()
	err := t.tx.QueryRow(ctx, `INSERT INTO sales_lines (transaction_id, product_id, quantity, price, value, created_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		line.TransactionID, line.ProductID, line.Quantity, line.Price, line.Value, now).Scan(&line.ID)
	if err != nil {
		return Line{}, err
	}
	line.CreatedAt = now
	return line, nil
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

func (t *txRepo) UpsertDebt(ctx context.Context, debt billing.Debt) error {
	now := time.Now().UTC()
	_, err := t.tx.Exec(ctx, `INSERT INTO debts (transaction_id, client_id, amount_due, is_paid, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (transaction_id) DO UPDATE SET amount_due = EXCLUDED.amount_due, is_paid = EXCLUDED.is_paid, updated_at = EXCLUDED.updated_at`,
		debt.TransactionID, debt.ClientID, debt.AmountDue, debt.IsPaid, now)
	return err
}
