// Package billing records payments against sales transactions and keeps the
// derived debt record reconciled.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/shared"
)

// Method enumerates accepted payment methods.
type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	}
	return false
}

// Payment is a single payment against a sales transaction.
type Payment struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        Method          `json:"method"`
	PaidAt        time.Time       `json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Debt is the derived gap between a transaction's line value total and its
// payments total. It is recomputed eagerly on every line and payment post.
type Debt struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	ClientID      int64           `json:"client_id"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	IsPaid        bool            `json:"is_paid"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

var (
	// ErrInvalidAmount rejects non-positive payment amounts.
	ErrInvalidAmount = fmt.Errorf("billing: %w: amount must be positive", shared.ErrValidation)
	// ErrInvalidMethod rejects unknown payment methods.
	ErrInvalidMethod = fmt.Errorf("billing: %w: method must be cash, card, or transfer", shared.ErrValidation)
)
