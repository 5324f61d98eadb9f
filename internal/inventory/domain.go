package inventory

import (
	"errors"
	"time"
)

// Level is the on-hand quantity for one product. A level row is created
// lazily by the first purchase line for the product and lives for the
// lifetime of the product.
type Level struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyMode controls what happens when no level row exists yet.
type ApplyMode int

const (
	// RequireExisting rejects the adjustment when the product has no level
	// row. Sales postings use this: selling a product that never had stock
	// received is a caller error, not a silent negative baseline.
	RequireExisting ApplyMode = iota
	// CreateIfMissing starts from a zero-quantity row. Purchase postings
	// use this: absence is the normal case for a first-ever stock receipt.
	CreateIfMissing
)

// ErrLevelNotFound indicates the product has no inventory row.
var ErrLevelNotFound = errors.New("inventory: level not found")

// ErrZeroDelta indicates an adjustment that would be a no-op.
var ErrZeroDelta = errors.New("inventory: delta must be non-zero")
