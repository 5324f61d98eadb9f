package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook/stockbook/internal/shared"
)

// Repository reads inventory levels from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetLevel returns the level for one product.
func (r *Repository) GetLevel(ctx context.Context, productID int64) (Level, error) {
	var lvl Level
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, quantity, created_at, updated_at FROM inventory_levels WHERE product_id = $1`, productID).
		Scan(&lvl.ID, &lvl.ProductID, &lvl.Quantity, &lvl.CreatedAt, &lvl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Level{}, ErrLevelNotFound
	}
	if err != nil {
		return Level{}, err
	}
	return lvl, nil
}

// ListLevels returns levels ordered by product, paginated.
func (r *Repository) ListLevels(ctx context.Context, page shared.Pagination) ([]Level, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_levels`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, product_id, quantity, created_at, updated_at FROM inventory_levels ORDER BY product_id LIMIT $1 OFFSET $2`,
		page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var levels []Level
	for rows.Next() {
		var lvl Level
		if err := rows.Scan(&lvl.ID, &lvl.ProductID, &lvl.Quantity, &lvl.CreatedAt, &lvl.UpdatedAt); err != nil {
			return nil, 0, err
		}
		levels = append(levels, lvl)
	}
	return levels, total, rows.Err()
}

// TxStore implements LedgerStore over an open pgx transaction. Sales and
// purchasing repositories construct one inside their WithTx closures.
type TxStore struct {
	tx pgx.Tx
}

// NewTxStore wraps tx as a LedgerStore.
func NewTxStore(tx pgx.Tx) *TxStore {
	return &TxStore{tx: tx}
}

// GetLevelForUpdate reads the level row with SELECT ... FOR UPDATE so
// concurrent postings against the same product serialize on the row lock.
func (s *TxStore) GetLevelForUpdate(ctx context.Context, productID int64) (Level, error) {
	var lvl Level
	err := s.tx.QueryRow(ctx, `SELECT id, product_id, quantity, created_at, updated_at FROM inventory_levels WHERE product_id = $1 FOR UPDATE`, productID).
		Scan(&lvl.ID, &lvl.ProductID, &lvl.Quantity, &lvl.CreatedAt, &lvl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Level{}, ErrLevelNotFound
	}
	if err != nil {
		return Level{}, err
	}
	return lvl, nil
}

// UpsertLevel inserts or updates the level row.
func (s *TxStore) UpsertLevel(ctx context.Context, level Level) error {
	now := time.Now().UTC()
	_, err := s.tx.Exec(ctx, `INSERT INTO inventory_levels (product_id, quantity, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		level.ProductID, level.Quantity, now)
	return err
}
