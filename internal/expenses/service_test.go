package expenses

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/stockbook/internal/shared"
)

type memoryExpenseRepo struct {
	expenses map[int64]Expense
	txns     map[int64][]ExpenseTransaction
	nextID   int64
}

func newMemoryExpenseRepo() *memoryExpenseRepo {
	return &memoryExpenseRepo{
		expenses: make(map[int64]Expense),
		txns:     make(map[int64][]ExpenseTransaction),
	}
}

func (r *memoryExpenseRepo) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	r.nextID++
	e.ID = r.nextID
	e.CreatedAt = time.Now()
	r.expenses[e.ID] = e
	return e, nil
}

func (r *memoryExpenseRepo) GetExpense(ctx context.Context, id int64) (Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return Expense{}, fmt.Errorf("%w: expense", shared.ErrNotFound)
	}
	return e, nil
}

func (r *memoryExpenseRepo) ListExpenses(ctx context.Context, filter ListFilter) ([]Expense, int, error) {
	var out []Expense
	for _, e := range r.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, len(out), nil
}

func (r *memoryExpenseRepo) UpdateExpense(ctx context.Context, id int64, e Expense) error {
	existing, ok := r.expenses[id]
	if !ok {
		return fmt.Errorf("%w: expense", shared.ErrNotFound)
	}
	existing.Title = e.Title
	existing.Amount = e.Amount
	r.expenses[id] = existing
	return nil
}

func (r *memoryExpenseRepo) DeleteExpense(ctx context.Context, id int64) error {
	if _, ok := r.expenses[id]; !ok {
		return fmt.Errorf("%w: expense", shared.ErrNotFound)
	}
	delete(r.expenses, id)
	delete(r.txns, id)
	return nil
}

func (r *memoryExpenseRepo) InsertTransaction(ctx context.Context, t ExpenseTransaction) (ExpenseTransaction, error) {
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	r.txns[t.ExpenseID] = append(r.txns[t.ExpenseID], t)
	return t, nil
}

func (r *memoryExpenseRepo) ListTransactions(ctx context.Context, expenseID int64) ([]ExpenseTransaction, error) {
	return r.txns[expenseID], nil
}

func fixture() (*Service, *memoryExpenseRepo) {
	repo := newMemoryExpenseRepo()
	clock := shared.FixedClock{At: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewService(repo, clock), repo
}

func TestCreateExpenseValidation(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	_, err := svc.CreateExpense(ctx, Expense{Title: "  "})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateExpense(ctx, Expense{Title: "Rent", Amount: decimal.RequireFromString("-1.00")})
	require.ErrorIs(t, err, shared.ErrValidation)

	e, err := svc.CreateExpense(ctx, Expense{Title: "Rent", Amount: decimal.RequireFromString("400.00")})
	require.NoError(t, err)
	require.NotZero(t, e.ID)
}

func TestAddTransactionDefaultsOccurredAt(t *testing.T) {
	svc, repo := fixture()
	ctx := context.Background()

	e, err := svc.CreateExpense(ctx, Expense{Title: "Utilities", Amount: decimal.Zero})
	require.NoError(t, err)

	txn, err := svc.AddTransaction(ctx, e.ID, "march electricity", time.Time{})
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), txn.OccurredAt)
	require.Len(t, repo.txns[e.ID], 1)
}

func TestAddTransactionExplicitOccurredAt(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	e, err := svc.CreateExpense(ctx, Expense{Title: "Utilities", Amount: decimal.Zero})
	require.NoError(t, err)

	at := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	txn, err := svc.AddTransaction(ctx, e.ID, "february electricity", at)
	require.NoError(t, err)
	require.Equal(t, at, txn.OccurredAt)
}

func TestAddTransactionRequiresCommentAndExpense(t *testing.T) {
	svc, repo := fixture()
	ctx := context.Background()

	e, err := svc.CreateExpense(ctx, Expense{Title: "Fuel", Amount: decimal.Zero})
	require.NoError(t, err)

	_, err = svc.AddTransaction(ctx, e.ID, "  ", time.Time{})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.txns[e.ID])

	_, err = svc.AddTransaction(ctx, 99, "diesel", time.Time{})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteExpenseRemovesTransactions(t *testing.T) {
	svc, repo := fixture()
	ctx := context.Background()

	e, err := svc.CreateExpense(ctx, Expense{Title: "Repairs", Amount: decimal.Zero})
	require.NoError(t, err)
	_, err = svc.AddTransaction(ctx, e.ID, "roof patch", time.Time{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteExpense(ctx, e.ID))
	require.Empty(t, repo.txns[e.ID])
	_, err = svc.GetExpense(ctx, e.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
