package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockbook/stockbook/internal/shared"
)

// RepositoryPort defines data access for catalog entities.
type RepositoryPort interface {
	CreateProduct(ctx context.Context, p Product) (Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error)
	UpdateProduct(ctx context.Context, id int64, p Product) error
	DeleteProduct(ctx context.Context, id int64) error

	CreateClient(ctx context.Context, c Client) (Client, error)
	GetClient(ctx context.Context, id int64) (Client, error)
	ListClients(ctx context.Context, filter ListFilter) ([]Client, int, error)
	UpdateClient(ctx context.Context, id int64, c Client) error
	DeleteClient(ctx context.Context, id int64) error

	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, int, error)
	UpdateSupplier(ctx context.Context, id int64, s Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error
}

// Service handles catalog business rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.ValidationError("name", "is required")
	}
	if p.Price.LessThan(decimal.Zero) {
		return shared.ValidationError("price", "must not be negative")
	}
	return nil
}

func validateParty(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.ValidationError("name", "is required")
	}
	return nil
}

// CreateProduct persists a new product.
func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	return s.repo.CreateProduct(ctx, p)
}

// GetProduct fetches a product by ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ValidationError("id", "must be positive")
	}
	return s.repo.GetProduct(ctx, id)
}

// ListProducts returns products matching filter.
func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, shared.Pagination, error) {
	items, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// UpdateProduct replaces product fields.
func (s *Service) UpdateProduct(ctx context.Context, id int64, p Product) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, id, p)
}

// DeleteProduct removes a product. Deletion is blocked, not cascaded, while
// sales or purchase lines still reference the product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	return s.repo.DeleteProduct(ctx, id)
}

// CreateClient persists a new client.
func (s *Service) CreateClient(ctx context.Context, c Client) (Client, error) {
	if err := validateParty(c.Name); err != nil {
		return Client{}, err
	}
	return s.repo.CreateClient(ctx, c)
}

// GetClient fetches a client by ID.
func (s *Service) GetClient(ctx context.Context, id int64) (Client, error) {
	if id <= 0 {
		return Client{}, shared.ValidationError("id", "must be positive")
	}
	return s.repo.GetClient(ctx, id)
}

// ListClients returns clients matching filter.
func (s *Service) ListClients(ctx context.Context, filter ListFilter) ([]Client, shared.Pagination, error) {
	items, total, err := s.repo.ListClients(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// UpdateClient replaces client fields.
func (s *Service) UpdateClient(ctx context.Context, id int64, c Client) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	if err := validateParty(c.Name); err != nil {
		return err
	}
	return s.repo.UpdateClient(ctx, id, c)
}

// DeleteClient removes a client. Blocked while transactions reference it.
func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	return s.repo.DeleteClient(ctx, id)
}

// CreateSupplier persists a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, sup Supplier) (Supplier, error) {
	if err := validateParty(sup.Name); err != nil {
		return Supplier{}, err
	}
	return s.repo.CreateSupplier(ctx, sup)
}

// GetSupplier fetches a supplier by ID.
func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ValidationError("id", "must be positive")
	}
	return s.repo.GetSupplier(ctx, id)
}

// ListSuppliers returns suppliers matching filter.
func (s *Service) ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, shared.Pagination, error) {
	items, total, err := s.repo.ListSuppliers(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// UpdateSupplier replaces supplier fields.
func (s *Service) UpdateSupplier(ctx context.Context, id int64, sup Supplier) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	if err := validateParty(sup.Name); err != nil {
		return err
	}
	return s.repo.UpdateSupplier(ctx, id, sup)
}

// DeleteSupplier removes a supplier. Blocked while purchases reference it.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	return s.repo.DeleteSupplier(ctx, id)
}
