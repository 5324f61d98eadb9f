// Package expenses keeps a standalone cost ledger: expense categories and
// the individual postings recorded against them. It touches no other
// domain; rows are additive and never reconciled.
package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a cost category with a running total.
type Expense struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExpenseTransaction is a single posting against an expense.
type ExpenseTransaction struct {
	ID         int64     `json:"id"`
	ExpenseID  int64     `json:"expense_id"`
	Comment    string    `json:"comment"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListFilter narrows expense listings.
type ListFilter struct {
	Search  string
	Page    int
	PerPage int
}
