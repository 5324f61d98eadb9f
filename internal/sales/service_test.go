package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/stockbook/internal/billing"
	"github.com/stockbook/stockbook/internal/catalog"
	"github.com/stockbook/stockbook/internal/inventory"
	"github.com/stockbook/stockbook/internal/shared"
)

type memoryCatalog struct {
	clients  map[int64]catalog.Client
	products map[int64]catalog.Product
}

func (c *memoryCatalog) GetClient(ctx context.Context, id int64) (catalog.Client, error) {
	cl, ok := c.clients[id]
	if !ok {
		return catalog.Client{}, fmt.Errorf("%w: client", shared.ErrNotFound)
	}
	return cl, nil
}

func (c *memoryCatalog) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	return p, nil
}

type memoryLedger struct {
	levels map[int64]inventory.Level
}

func (l *memoryLedger) GetLevelForUpdate(ctx context.Context, productID int64) (inventory.Level, error) {
	if lvl, ok := l.levels[productID]; ok {
		return lvl, nil
	}
	return inventory.Level{}, inventory.ErrLevelNotFound
}

func (l *memoryLedger) UpsertLevel(ctx context.Context, level inventory.Level) error {
	l.levels[level.ProductID] = level
	return nil
}

type memorySalesRepo struct {
	txns     map[int64]Transaction
	lines    map[int64][]Line
	payments map[int64][]decimal.Decimal
	debts    map[int64]billing.Debt
	ledger   *memoryLedger
	nextID   int64
}

func newMemorySalesRepo() *memorySalesRepo {
	return &memorySalesRepo{
		txns:     make(map[int64]Transaction),
		lines:    make(map[int64][]Line),
		payments: make(map[int64][]decimal.Decimal),
		debts:    make(map[int64]billing.Debt),
		ledger:   &memoryLedger{levels: make(map[int64]inventory.Level)},
	}
}

func (r *memorySalesRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memorySalesTx{repo: r})
}

func (r *memorySalesRepo) InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error) {
	for _, existing := range r.txns {
		if existing.Slug == txn.Slug {
			return Transaction{}, ErrSlugTaken
		}
	}
	r.nextID++
	txn.ID = r.nextID
	txn.CreatedAt = time.Now()
	r.txns[txn.ID] = txn
	return txn, nil
}

func (r *memorySalesRepo) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	txn, ok := r.txns[id]
	if !ok {
		return Transaction{}, fmt.Errorf("%w: sales transaction", shared.ErrNotFound)
	}
	return txn, nil
}

func (r *memorySalesRepo) ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, int, error) {
	var out []Transaction
	for _, txn := range r.txns {
		if filter.ClientID != 0 && txn.ClientID != filter.ClientID {
			continue
		}
		if filter.Slug != "" && txn.Slug != filter.Slug {
			continue
		}
		out = append(out, txn)
	}
	return out, len(out), nil
}

func (r *memorySalesRepo) ListLines(ctx context.Context, transactionID int64) ([]Line, error) {
	return r.lines[transactionID], nil
}

type memorySalesTx struct {
	repo *memorySalesRepo
}

func (t *memorySalesTx) Ledger() inventory.LedgerStore { return t.repo.ledger }

func (t *memorySalesTx) InsertLine(ctx context.Context, line Line) (Line, error) {
	t.repo.nextID++
	line.ID = t.repo.nextID
	line.CreatedAt = time.Now()
	t.repo.lines[line.TransactionID] = append(t.repo.lines[line.TransactionID], line)
	return line, nil
}

func (t *memorySalesTx) SumLineValues(ctx context.Context, transactionID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range t.repo.lines[transactionID] {
		total = total.Add(l.Value)
	}
	return total, nil
}

func (t *memorySalesTx) SumPayments(ctx context.Context, transactionID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, amount := range t.repo.payments[transactionID] {
		total = total.Add(amount)
	}
	return total, nil
}

func (t *memorySalesTx) UpsertDebt(ctx context.Context, debt billing.Debt) error {
	t.repo.debts[debt.TransactionID] = debt
	return nil
}

func fixture() (*Service, *memorySalesRepo, *memoryCatalog) {
	repo := newMemorySalesRepo()
	cat := &memoryCatalog{
		clients: map[int64]catalog.Client{
			1: {ID: 1, Name: "Ali Valiyev"},
		},
		products: map[int64]catalog.Product{
			10: {ID: 10, Name: "Rice 1kg", Price: decimal.RequireFromString("10.00")},
		},
	}
	clock := shared.FixedClock{At: time.Date(2024, 3, 1, 10, 30, 5, 0, time.UTC)}
	return NewService(repo, cat, clock, nil), repo, cat
}

func TestCreateTransactionDerivesSlug(t *testing.T) {
	svc, _, _ := fixture()

	txn, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)
	require.Equal(t, "ali-valiyev-20240301103005", txn.Slug)
}

func TestCreateTransactionSameSecondGetsDistinctSlugs(t *testing.T) {
	svc, _, _ := fixture()
	ctx := context.Background()

	first, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)

	second, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)

	require.NotEqual(t, first.Slug, second.Slug)
	require.Contains(t, second.Slug, first.Slug+"-")
}

func TestCreateTransactionSuppliedSlug(t *testing.T) {
	svc, _, _ := fixture()
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1, Slug: "march-invoice-1"})
	require.NoError(t, err)
	require.Equal(t, "march-invoice-1", txn.Slug)

	// A supplied slug is used verbatim; a conflict is not retried.
	_, err = svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1, Slug: "march-invoice-1"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateTransactionUnknownClient(t *testing.T) {
	svc, _, _ := fixture()

	_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{ClientID: 99})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddLineSnapshotsPriceAndDecrementsInventory(t *testing.T) {
	svc, repo, _ := fixture()
	ctx := context.Background()
	repo.ledger.levels[10] = inventory.Level{ProductID: 10, Quantity: 5}

	txn, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)

	line, err := svc.AddLine(ctx, AddLineInput{TransactionID: txn.ID, ProductID: 10, Quantity: 2})
	require.NoError(t, err)
	require.True(t, line.Price.Equal(decimal.RequireFromString("10.00")))
	require.True(t, line.Value.Equal(decimal.RequireFromString("20.00")))
	require.EqualValues(t, 3, repo.ledger.levels[10].Quantity)

	debt := repo.debts[txn.ID]
	require.True(t, debt.AmountDue.Equal(decimal.RequireFromString("20.00")))
	require.False(t, debt.IsPaid)
}

func TestAddLineExplicitPriceWins(t *testing.T) {
	svc, repo, _ := fixture()
	ctx := context.Background()
	repo.ledger.levels[10] = inventory.Level{ProductID: 10, Quantity: 5}

	txn, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)

	price := decimal.RequireFromString("8.25")
	line, err := svc.AddLine(ctx, AddLineInput{TransactionID: txn.ID, ProductID: 10, Quantity: 4, Price: &price})
	require.NoError(t, err)
	require.True(t, line.Value.Equal(decimal.RequireFromString("33.00")))
}

func TestAddLineValueIsExactUnderDecimalArithmetic(t *testing.T) {
	svc, repo, _ := fixture()
	ctx := context.Background()
	repo.ledger.levels[10] = inventory.Level{ProductID: 10, Quantity: 1000}

	txn, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)

	// 0.10 * 3 drifts under binary floating point; it must not here.
	price := decimal.RequireFromString("0.10")
	line, err := svc.AddLine(ctx, AddLineInput{TransactionID: txn.ID, ProductID: 10, Quantity: 3, Price: &price})
	require.NoError(t, err)
	require.Equal(t, "0.30", line.Value.StringFixed(2))
}

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	svc, repo, _ := fixture()
	ctx := context.Background()
	repo.ledger.levels[10] = inventory.Level{ProductID: 10, Quantity: 5}

	txn, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)

	for _, qty := range []int64{0, -3} {
		_, err = svc.AddLine(ctx, AddLineInput{TransactionID: txn.ID, ProductID: 10, Quantity: qty})
		require.ErrorIs(t, err, shared.ErrValidation)
	}
	require.EqualValues(t, 5, repo.ledger.levels[10].Quantity)
	require.Empty(t, repo.lines[txn.ID])
}

func TestAddLineRejectsMissingInventory(t *testing.T) {
	svc, repo, _ := fixture()
	ctx := context.Background()

	txn, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)

	_, err = svc.AddLine(ctx, AddLineInput{TransactionID: txn.ID, ProductID: 10, Quantity: 1})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.lines[txn.ID])
}

func TestAddLinePermitsOversell(t *testing.T) {
	svc, repo, _ := fixture()
	ctx := context.Background()
	repo.ledger.levels[10] = inventory.Level{ProductID: 10, Quantity: 3}

	txn, err := svc.CreateTransaction(ctx, CreateTransactionInput{ClientID: 1})
	require.NoError(t, err)

	_, err = svc.AddLine(ctx, AddLineInput{TransactionID: txn.ID, ProductID: 10, Quantity: 5})
	require.NoError(t, err)
	require.EqualValues(t, -2, repo.ledger.levels[10].Quantity)
}
