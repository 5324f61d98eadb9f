package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook/stockbook/internal/inventory"
	"github.com/stockbook/stockbook/internal/platform/db"
	"github.com/stockbook/stockbook/internal/shared"
)

// Repository persists purchasing data in PostgreSQL.
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

// InsertPurchase creates a purchase header.
func (r *Repository) InsertPurchase(ctx context.Context, p Purchase) (Purchase, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO purchases (supplier_id, created_at, updated_at)
VALUES ($1, $2, $2) RETURNING id`, p.SupplierID, now).Scan(&p.ID)
	if err != nil {
		if shared.IsForeignKeyViolation(err) {
			return Purchase{}, fmt.Errorf("%w: supplier", shared.ErrNotFound)
		}
		return Purchase{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// GetPurchase fetches a purchase header.
func (r *Repository) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	var p Purchase
	err := r.pool.QueryRow(ctx, `SELECT id, supplier_id, created_at, updated_at FROM purchases WHERE id = $1`, id).
		Scan(&p.ID, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, fmt.Errorf("%w: purchase", shared.ErrNotFound)
	}
	if err != nil {
		return Purchase{}, err
	}
	return p, nil
}

// ListPurchases returns headers matching filter, newest first.
func (r *Repository) ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases WHERE ($1 = 0 OR supplier_id = $1)`, filter.SupplierID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, supplier_id, created_at, updated_at FROM purchases
WHERE ($1 = 0 OR supplier_id = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		filter.SupplierID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		purchases = append(purchases, p)
	}
	return purchases, total, rows.Err()
}

// ListLines returns the lines of one purchase in posting order.
func (r *Repository) ListLines(ctx context.Context, purchaseID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, purchase_id, product_id, quantity, price, created_at
FROM purchase_lines WHERE purchase_id = $1 ORDER BY id`, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.ProductID, &l.Quantity, &l.Price, &l.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type txRepo struct {
	tx     pgx.Tx
	ledger *inventory.TxStore
}

func (t *txRepo) Ledger() inventory.LedgerStore { return t.ledger }

func (t *txRepo) InsertLine(ctx context.Context, line Line) (Line, error) {
	now := time.Now().UTC()
	err := t.tx.QueryRow(ctx, `INSERT INTO purchase_lines (purchase_id, product_id, quantity, price, created_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		line.PurchaseID, line.ProductID, line.Quantity, line.Price, now).Scan(&line.ID)
	if err != nil {
		return Line{}, err
	}
	line.CreatedAt = now
	return line, nil
}
