// Package catalog holds the reference data transactional modules point at:
// products, clients, and suppliers.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item. Price is the current list price; sales lines
// snapshot it at posting time rather than live-linking to it.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Client is a buyer referenced by sales transactions and debts.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Supplier is a vendor referenced by purchases.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	Search  string
	Page    int
	PerPage int
}
