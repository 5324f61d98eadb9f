package purchasing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/catalog"
	"github.com/stockbook/stockbook/internal/inventory"
	"github.com/stockbook/stockbook/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	InsertPurchase(ctx context.Context, p Purchase) (Purchase, error)
	GetPurchase(ctx context.Context, id int64) (Purchase, error)
	ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, int, error)
	ListLines(ctx context.Context, purchaseID int64) ([]Line, error)
}

// TxRepository exposes the operations of a single line posting.
type TxRepository interface {
	InsertLine(ctx context.Context, line Line) (Line, error)
	Ledger() inventory.LedgerStore
}

// CatalogPort exposes the reference data lookups the service needs.
type CatalogPort interface {
	GetSupplier(ctx context.Context, id int64) (catalog.Supplier, error)
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
}

// Service orchestrates purchasing flows.
type Service struct {
	repo        RepositoryPort
	catalog     CatalogPort
	idempotency *shared.IdempotencyStore
}

// NewService constructs purchasing service. idempotency may be nil.
func NewService(repo RepositoryPort, cat CatalogPort, idem *shared.IdempotencyStore) *Service {
	return &Service{repo: repo, catalog: cat, idempotency: idem}
}

// AddLineInput describes a purchase line posting.
type AddLineInput struct {
	PurchaseID     int64
	ProductID      int64
	Quantity       int64
	Price          decimal.Decimal
	IdempotencyKey string
}

// CreatePurchase opens a purchase header for a supplier.
func (s *Service) CreatePurchase(ctx context.Context, supplierID int64) (Purchase, error) {
	supplier, err := s.catalog.GetSupplier(ctx, supplierID)
	if err != nil {
		return Purchase{}, err
	}
	return s.repo.InsertPurchase(ctx, Purchase{SupplierID: supplier.ID})
}

// AddLine posts one purchase line: the line insert and the inventory
// increment share one atomic unit of work. A missing level row is the
// normal first-receipt case and is created at zero.
func (s *Service) AddLine(ctx context.Context, input AddLineInput) (Line, error) {
	if input.Quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	if input.Price.IsNegative() {
		return Line{}, ErrInvalidPrice
	}

	purchase, err := s.repo.GetPurchase(ctx, input.PurchaseID)
	if err != nil {
		return Line{}, err
	}
	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return Line{}, err
	}

	claimed := false
	if input.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "purchasing"); err != nil {
			return Line{}, err
		}
		claimed = true
	}

	var line Line
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertLine(ctx, Line{
			PurchaseID: purchase.ID,
			ProductID:  product.ID,
			Quantity:   input.Quantity,
			Price:      input.Price,
		})
		if err != nil {
			return err
		}
		line = inserted

		_, err = inventory.ApplyDelta(ctx, tx.Ledger(), product.ID, input.Quantity, inventory.CreateIfMissing)
		return err
	})
	if err != nil {
		if claimed {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey, "purchasing")
		}
		return Line{}, err
	}
	return line, nil
}

// GetPurchase returns the header with its lines.
func (s *Service) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	p, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return Purchase{}, err
	}
	lines, err := s.repo.ListLines(ctx, p.ID)
	if err != nil {
		return Purchase{}, err
	}
	p.Lines = lines
	return p, nil
}

// ListPurchases returns headers matching filter.
func (s *Service) ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, shared.Pagination, error) {
	items, total, err := s.repo.ListPurchases(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}
