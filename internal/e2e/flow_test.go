// Package e2e walks the ledger and reconciliation cores through a full
// trading cycle without a database: receive stock, sell part of it,
// collect payment, settle the debt.
package e2e

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/stockbook/internal/billing"
	"github.com/stockbook/stockbook/internal/inventory"
)

type flowState struct {
	levels   map[int64]inventory.Level
	lines    []decimal.Decimal
	payments []decimal.Decimal
	debt     billing.Debt
}

func (s *flowState) GetLevelForUpdate(ctx context.Context, productID int64) (inventory.Level, error) {
	if lvl, ok := s.levels[productID]; ok {
		return lvl, nil
	}
	return inventory.Level{}, inventory.ErrLevelNotFound
}

func (s *flowState) UpsertLevel(ctx context.Context, level inventory.Level) error {
	s.levels[level.ProductID] = level
	return nil
}

func (s *flowState) SumLineValues(ctx context.Context, transactionID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range s.lines {
		total = total.Add(v)
	}
	return total, nil
}

func (s *flowState) SumPayments(ctx context.Context, transactionID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range s.payments {
		total = total.Add(p)
	}
	return total, nil
}

func (s *flowState) UpsertDebt(ctx context.Context, debt billing.Debt) error {
	s.debt = debt
	return nil
}

func TestTradingCycle(t *testing.T) {
	ctx := context.Background()
	state := &flowState{levels: make(map[int64]inventory.Level)}
	const productID, txnID, clientID = int64(10), int64(1), int64(7)

	// Receive 5 units: the level is created on first receipt.
	level, err := inventory.ApplyDelta(ctx, state, productID, 5, inventory.CreateIfMissing)
	require.NoError(t, err)
	require.EqualValues(t, 5, level.Quantity)

	// Sell 2 at 10.00: inventory drops, an unpaid debt of 20.00 appears.
	price := decimal.RequireFromString("10.00")
	value := price.Mul(decimal.NewFromInt(2))
	level, err = inventory.ApplyDelta(ctx, state, productID, -2, inventory.RequireExisting)
	require.NoError(t, err)
	require.EqualValues(t, 3, level.Quantity)

	state.lines = append(state.lines, value)
	debt, err := billing.Reconcile(ctx, state, txnID, clientID)
	require.NoError(t, err)
	require.Equal(t, "20.00", debt.AmountDue.StringFixed(2))
	require.False(t, debt.IsPaid)

	// Pay 20.00: the debt settles exactly.
	state.payments = append(state.payments, decimal.RequireFromString("20.00"))
	debt, err = billing.Reconcile(ctx, state, txnID, clientID)
	require.NoError(t, err)
	require.Equal(t, "0.00", debt.AmountDue.StringFixed(2))
	require.True(t, debt.IsPaid)
	require.EqualValues(t, 3, state.levels[productID].Quantity)
}
