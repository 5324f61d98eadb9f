// Package sales owns sales transactions and their line items. Posting a
// line snapshots the product price, computes the line value, and decrements
// the inventory level in the same database transaction.
package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/shared"
)

// Transaction is the sales header. Slug is its derived identity: assigned
// once at creation, unique, never recomputed.
type Transaction struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Lines     []Line    `json:"lines,omitempty"`
}

// Line is one posted sale of a product. Value is quantity times the
// captured price; lines are append-only, never edited after posting.
type Line struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	ProductID     int64           `json:"product_id"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Value         decimal.Decimal `json:"value"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	ClientID int64
	Slug     string
	From     time.Time
	To       time.Time
	Page     int
	PerPage  int
}

var (
	// ErrInvalidQuantity rejects zero or negative line quantities.
	ErrInvalidQuantity = fmt.Errorf("sales: %w: quantity must be a positive integer", shared.ErrValidation)
	// ErrInvalidPrice rejects negative explicit prices.
	ErrInvalidPrice = fmt.Errorf("sales: %w: price must not be negative", shared.ErrValidation)
	// ErrSlugTaken indicates the chosen slug already exists.
	ErrSlugTaken = fmt.Errorf("sales: %w: slug already in use", shared.ErrConflict)
	// ErrInventoryNotFound rejects selling a product that never had stock received.
	ErrInventoryNotFound = fmt.Errorf("sales: %w: no inventory record for product", shared.ErrNotFound)
)
