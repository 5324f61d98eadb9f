package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// ReconcileStore is the storage surface Reconcile needs. Both the billing
// payment transaction and the sales line transaction implement it, so the
// debt row is refreshed inside whichever posting touched the totals.
type ReconcileStore interface {
	SumLineValues(ctx context.Context, transactionID int64) (decimal.Decimal, error)
	SumPayments(ctx context.Context, transactionID int64) (decimal.Decimal, error)
	UpsertDebt(ctx context.Context, debt Debt) error
}

// Reconcile recomputes amount_due = sum(line.value) - sum(payment.amount)
// for the transaction and writes the debt row with is_paid set when the
// balance reaches zero or below (overpayment counts as paid).
func Reconcile(ctx context.Context, store ReconcileStore, transactionID, clientID int64) (Debt, error) {
	lineTotal, err := store.SumLineValues(ctx, transactionID)
	if err != nil {
		return Debt{}, err
	}
	paidTotal, err := store.SumPayments(ctx, transactionID)
	if err != nil {
		return Debt{}, err
	}

	amountDue := lineTotal.Sub(paidTotal)
	debt := Debt{
		TransactionID: transactionID,
		ClientID:      clientID,
		AmountDue:     amountDue,
		IsPaid:        amountDue.LessThanOrEqual(decimal.Zero),
	}
	if err := store.UpsertDebt(ctx, debt); err != nil {
		return Debt{}, err
	}
	return debt, nil
}
