// Package purchasing mirrors the sales side for incoming stock: a purchase
// header per supplier delivery and line postings that increment inventory.
package purchasing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/shared"
)

// Purchase is a stock receipt header from one supplier.
type Purchase struct {
	ID         int64     `json:"id"`
	SupplierID int64     `json:"supplier_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Lines      []Line    `json:"lines,omitempty"`
}

// Line is one received product. Posting it creates the inventory level row
// when the product has never been stocked before.
type Line struct {
	ID         int64           `json:"id"`
	PurchaseID int64           `json:"purchase_id"`
	ProductID  int64           `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ListFilter narrows purchase listings.
type ListFilter struct {
	SupplierID int64
	Page       int
	PerPage    int
}

var (
	// ErrInvalidQuantity rejects zero or negative line quantities.
	ErrInvalidQuantity = fmt.Errorf("purchasing: %w: quantity must be a positive integer", shared.ErrValidation)
	// ErrInvalidPrice rejects negative unit prices.
	ErrInvalidPrice = fmt.Errorf("purchasing: %w: price must not be negative", shared.ErrValidation)
)
