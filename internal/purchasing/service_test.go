package purchasing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/stockbook/internal/catalog"
	"github.com/stockbook/stockbook/internal/inventory"
	"github.com/stockbook/stockbook/internal/shared"
)

type memoryCatalog struct {
	suppliers map[int64]catalog.Supplier
	products  map[int64]catalog.Product
}

func (c *memoryCatalog) GetSupplier(ctx context.Context, id int64) (catalog.Supplier, error) {
	s, ok := c.suppliers[id]
	if !ok {
		return catalog.Supplier{}, fmt.Errorf("%w: supplier", shared.ErrNotFound)
	}
	return s, nil
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

type memoryPurchasingRepo struct {
	purchases map[int64]Purchase
	lines     map[int64][]Line
	ledger    *memoryLedger
	nextID    int64
}

func newMemoryPurchasingRepo() *memoryPurchasingRepo {
	return &memoryPurchasingRepo{
		purchases: make(map[int64]Purchase),
		lines:     make(map[int64][]Line),
		ledger:    &memoryLedger{levels: make(map[int64]inventory.Level)},
	}
}

func (r *memoryPurchasingRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryPurchasingTx{repo: r})
}

func (r *memoryPurchasingRepo) InsertPurchase(ctx context.Context, p Purchase) (Purchase, error) {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.purchases[p.ID] = p
	return p, nil
}

func (r *memoryPurchasingRepo) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return Purchase{}, fmt.Errorf("%w: purchase", shared.ErrNotFound)
	}
	return p, nil
}

func (r *memoryPurchasingRepo) ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	var out []Purchase
	for _, p := range r.purchases {
		if filter.SupplierID != 0 && p.SupplierID != filter.SupplierID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryPurchasingRepo) ListLines(ctx context.Context, purchaseID int64) ([]Line, error) {
	return r.lines[purchaseID], nil
}

type memoryPurchasingTx struct {
	repo *memoryPurchasingRepo
}

func (t *memoryPurchasingTx) Ledger() inventory.LedgerStore { return t.repo.ledger }

func (t *memoryPurchasingTx) InsertLine(ctx context.Context, line Line) (Line, error) {
	t.repo.nextID++
	line.ID = t.repo.nextID
	line.CreatedAt = time.Now()
	t.repo.lines[line.PurchaseID] = append(t.repo.lines[line.PurchaseID], line)
	return line, nil
}

func purchasingFixture() (*Service, *memoryPurchasingRepo) {
	repo := newMemoryPurchasingRepo()
	cat := &memoryCatalog{
		suppliers: map[int64]catalog.Supplier{1: {ID: 1, Name: "Agro Trade"}},
		products:  map[int64]catalog.Product{10: {ID: 10, Name: "Rice 1kg", Price: decimal.RequireFromString("10.00")}},
	}
	return NewService(repo, cat, nil), repo
}

func TestAddLineCreatesLevelOnFirstReceipt(t *testing.T) {
	svc, repo := purchasingFixture()
	ctx := context.Background()

	p, err := svc.CreatePurchase(ctx, 1)
	require.NoError(t, err)

	line, err := svc.AddLine(ctx, AddLineInput{PurchaseID: p.ID, ProductID: 10, Quantity: 5, Price: decimal.RequireFromString("7.00")})
	require.NoError(t, err)
	require.NotZero(t, line.ID)
	require.EqualValues(t, 5, repo.ledger.levels[10].Quantity)

	// Second receipt increments the existing level.
	_, err = svc.AddLine(ctx, AddLineInput{PurchaseID: p.ID, ProductID: 10, Quantity: 3, Price: decimal.RequireFromString("7.10")})
	require.NoError(t, err)
	require.EqualValues(t, 8, repo.ledger.levels[10].Quantity)
}

func TestAddLineValidation(t *testing.T) {
	svc, repo := purchasingFixture()
	ctx := context.Background()

	p, err := svc.CreatePurchase(ctx, 1)
	require.NoError(t, err)

	_, err = svc.AddLine(ctx, AddLineInput{PurchaseID: p.ID, ProductID: 10, Quantity: 0, Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.AddLine(ctx, AddLineInput{PurchaseID: p.ID, ProductID: 10, Quantity: 2, Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, shared.ErrValidation)

	require.Empty(t, repo.ledger.levels)
}

func TestAddLineUnknownPurchaseOrProduct(t *testing.T) {
	svc, _ := purchasingFixture()
	ctx := context.Background()

	_, err := svc.AddLine(ctx, AddLineInput{PurchaseID: 99, ProductID: 10, Quantity: 1, Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, shared.ErrNotFound)

	p, err := svc.CreatePurchase(ctx, 1)
	require.NoError(t, err)

	_, err = svc.AddLine(ctx, AddLineInput{PurchaseID: p.ID, ProductID: 404, Quantity: 1, Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreatePurchaseUnknownSupplier(t *testing.T) {
	svc, _ := purchasingFixture()

	_, err := svc.CreatePurchase(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
