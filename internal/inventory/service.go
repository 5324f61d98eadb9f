package inventory

import (
	"context"
	"errors"

	"github.com/stockbook/stockbook/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	GetLevel(ctx context.Context, productID int64) (Level, error)
	ListLevels(ctx context.Context, page shared.Pagination) ([]Level, int, error)
}

// Service exposes read access to the ledger. Mutation happens only through
// ApplyDelta inside sales and purchase line postings.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetLevel returns the on-hand quantity for a product.
func (s *Service) GetLevel(ctx context.Context, productID int64) (Level, error) {
	lvl, err := s.repo.GetLevel(ctx, productID)
	if errors.Is(err, ErrLevelNotFound) {
		return Level{}, shared.ErrNotFound
	}
	return lvl, err
}

// ListLevels returns levels with pagination metadata.
func (s *Service) ListLevels(ctx context.Context, page, perPage int) ([]Level, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	levels, total, err := s.repo.ListLevels(ctx, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return levels, shared.NewPagination(page, perPage, total), nil
}
