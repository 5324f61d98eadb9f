package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/billing"
	"github.com/stockbook/stockbook/internal/catalog"
	"github.com/stockbook/stockbook/internal/inventory"
	"github.com/stockbook/stockbook/internal/shared"
)

const slugTimeLayout = "20060102150405"

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error)
	GetTransaction(ctx context.Context, id int64) (Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, int, error)
	ListLines(ctx context.Context, transactionID int64) ([]Line, error)
}

// TxRepository exposes the operations of a single line posting. It carries
// the inventory ledger and debt reconciliation surfaces so all three writes
// share one database transaction.
type TxRepository interface {
	InsertLine(ctx context.Context, line Line) (Line, error)
	Ledger() inventory.LedgerStore
	billing.ReconcileStore
}

// CatalogPort exposes the reference data lookups the service needs.
type CatalogPort interface {
	GetClient(ctx context.Context, id int64) (catalog.Client, error)
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
}

// Service orchestrates sales flows.
type Service struct {
	repo        RepositoryPort
	catalog     CatalogPort
	clock       shared.Clock
	idempotency *shared.IdempotencyStore
}

// NewService constructs sales service. idempotency may be nil.
func NewService(repo RepositoryPort, cat CatalogPort, clock shared.Clock, idem *shared.IdempotencyStore) *Service {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Service{repo: repo, catalog: cat, clock: clock, idempotency: idem}
}

// CreateTransactionInput describes a new sales header.
type CreateTransactionInput struct {
	ClientID int64
	Slug     string
}

// AddLineInput describes a line posting. Price nil means snapshot the
// product's current price.
type AddLineInput struct {
	TransactionID  int64
	ProductID      int64
	Quantity       int64
	Price          *decimal.Decimal
	IdempotencyKey string
}

// CreateTransaction creates a sales header. When no slug is supplied one is
// derived from the client name and the current second; a storage-level
// collision (two transactions for the same client within one second) is
// retried once with a short random suffix.
func (s *Service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (Transaction, error) {
	client, err := s.catalog.GetClient(ctx, input.ClientID)
	if err != nil {
		return Transaction{}, err
	}

	slug := input.Slug
	derived := slug == ""
	if derived {
		slug = Slugify(client.Name + "-" + s.clock.Now().Format(slugTimeLayout))
	}

	txn, err := s.repo.InsertTransaction(ctx, Transaction{ClientID: client.ID, Slug: slug})
	if errors.Is(err, ErrSlugTaken) && derived {
		slug = slug + "-" + uuid.NewString()[:8]
		txn, err = s.repo.InsertTransaction(ctx, Transaction{ClientID: client.ID, Slug: slug})
	}
	if err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// AddLine posts one sales line: price snapshot, value computation, inventory
// decrement, line insert, and debt refresh, all in one atomic unit of work.
func (s *Service) AddLine(ctx context.Context, input AddLineInput) (Line, error) {
	if input.Quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}

	txn, err := s.repo.GetTransaction(ctx, input.TransactionID)
	if err != nil {
		return Line{}, err
	}
	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return Line{}, err
	}

	price := product.Price
	if input.Price != nil {
		if input.Price.LessThan(decimal.Zero) {
			return Line{}, ErrInvalidPrice
		}
		price = *input.Price
	}
	value := price.Mul(decimal.NewFromInt(input.Quantity))

	claimed := false
	if input.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "sales"); err != nil {
			return Line{}, err
		}
		claimed = true
	}

	var line Line
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := inventory.ApplyDelta(ctx, tx.Ledger(), product.ID, -input.Quantity, inventory.RequireExisting); err != nil {
			if errors.Is(err, inventory.ErrLevelNotFound) {
				return ErrInventoryNotFound
			}
			return err
		}

		inserted, err := tx.InsertLine(ctx, Line{
			TransactionID: txn.ID,
			ProductID:     product.ID,
			Quantity:      input.Quantity,
			Price:         price,
			Value:         value,
		})
		if err != nil {
			return err
		}
		line = inserted

		_, err = billing.Reconcile(ctx, tx, txn.ID, txn.ClientID)
		return err
	})
	if err != nil {
		if claimed {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey, "sales")
		}
		return Line{}, err
	}
	return line, nil
}

// GetTransaction returns the header with its lines.
func (s *Service) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	lines, err := s.repo.ListLines(ctx, txn.ID)
	if err != nil {
		return Transaction{}, err
	}
	txn.Lines = lines
	return txn, nil
}

// ListTransactions returns headers matching filter.
func (s *Service) ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, shared.Pagination, error) {
	items, total, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}
