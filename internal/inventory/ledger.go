package inventory

import (
	"context"
	"errors"
	"fmt"
)

// LedgerStore is the minimal storage surface ApplyDelta needs. Domain
// transaction repositories implement it over their own database
// transaction, so a line insert and its inventory adjustment share one
// atomic unit of work.
type LedgerStore interface {
	// GetLevelForUpdate reads the level row under a row lock, returning
	// ErrLevelNotFound when the product has no row yet.
	GetLevelForUpdate(ctx context.Context, productID int64) (Level, error)
	// UpsertLevel writes the level row back.
	UpsertLevel(ctx context.Context, level Level) error
}

// ApplyDelta adjusts the on-hand quantity for a product: positive for a
// purchase receipt, negative for a sale. No lower bound is enforced;
// a negative result signals oversell and is visible to the caller, not
// blocked. Must be invoked exactly once per line-item posting.
func ApplyDelta(ctx context.Context, store LedgerStore, productID, delta int64, mode ApplyMode) (Level, error) {
	if delta == 0 {
		return Level{}, ErrZeroDelta
	}
	if productID <= 0 {
		return Level{}, fmt.Errorf("inventory: invalid product id %d", productID)
	}

	level, err := store.GetLevelForUpdate(ctx, productID)
	switch {
	case errors.Is(err, ErrLevelNotFound):
		if mode == RequireExisting {
			return Level{}, err
		}
		level = Level{ProductID: productID}
	case err != nil:
		return Level{}, err
	}

	level.Quantity += delta
	if err := store.UpsertLevel(ctx, level); err != nil {
		return Level{}, err
	}
	return level, nil
}
