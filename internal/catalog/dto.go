package catalog

import "github.com/shopspring/decimal"

// ProductForm carries create/update payloads for products.
type ProductForm struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// PartyForm carries create/update payloads for clients and suppliers.
type PartyForm struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
	Email string `json:"email" validate:"omitempty,email"`
}
