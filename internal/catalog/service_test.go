package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/stockbook/internal/shared"
)

type memoryCatalogRepo struct {
	products  map[int64]Product
	clients   map[int64]Client
	suppliers map[int64]Supplier
	refs      map[string]map[int64]bool
	nextID    int64
}

func newMemoryCatalogRepo() *memoryCatalogRepo {
	return &memoryCatalogRepo{
		products:  make(map[int64]Product),
		clients:   make(map[int64]Client),
		suppliers: make(map[int64]Supplier),
		refs:      map[string]map[int64]bool{"product": {}, "client": {}, "supplier": {}},
	}
}

func (r *memoryCatalogRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryCatalogRepo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p.ID = r.id()
	r.products[p.ID] = p
	return p, nil
}

func (r *memoryCatalogRepo) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	return p, nil
}

func (r *memoryCatalogRepo) ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		if filter.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *memoryCatalogRepo) UpdateProduct(ctx context.Context, id int64, p Product) error {
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	p.ID = id
	r.products[id] = p
	return nil
}

func (r *memoryCatalogRepo) DeleteProduct(ctx context.Context, id int64) error {
	if r.refs["product"][id] {
		return fmt.Errorf("%w: product still referenced", shared.ErrIntegrity)
	}
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func (r *memoryCatalogRepo) CreateClient(ctx context.Context, c Client) (Client, error) {
	c.ID = r.id()
	r.clients[c.ID] = c
	return c, nil
}

func (r *memoryCatalogRepo) GetClient(ctx context.Context, id int64) (Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return Client{}, fmt.Errorf("%w: client", shared.ErrNotFound)
	}
	return c, nil
}

func (r *memoryCatalogRepo) ListClients(ctx context.Context, filter ListFilter) ([]Client, int, error) {
	var out []Client
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *memoryCatalogRepo) UpdateClient(ctx context.Context, id int64, c Client) error {
	if _, ok := r.clients[id]; !ok {
		return fmt.Errorf("%w: client", shared.ErrNotFound)
	}
	c.ID = id
	r.clients[id] = c
	return nil
}

func (r *memoryCatalogRepo) DeleteClient(ctx context.Context, id int64) error {
	if r.refs["client"][id] {
		return fmt.Errorf("%w: client still referenced", shared.ErrIntegrity)
	}
	delete(r.clients, id)
	return nil
}

func (r *memoryCatalogRepo) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	s.ID = r.id()
	r.suppliers[s.ID] = s
	return s, nil
}

func (r *memoryCatalogRepo) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return Supplier{}, fmt.Errorf("%w: supplier", shared.ErrNotFound)
	}
	return s, nil
}

func (r *memoryCatalogRepo) ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, int, error) {
	var out []Supplier
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memoryCatalogRepo) UpdateSupplier(ctx context.Context, id int64, s Supplier) error {
	if _, ok := r.suppliers[id]; !ok {
		return fmt.Errorf("%w: supplier", shared.ErrNotFound)
	}
	s.ID = id
	r.suppliers[id] = s
	return nil
}

func (r *memoryCatalogRepo) DeleteSupplier(ctx context.Context, id int64) error {
	delete(r.suppliers, id)
	return nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemoryCatalogRepo())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, Product{Name: "  ", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateProduct(ctx, Product{Name: "Soap", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, shared.ErrValidation)

	p, err := svc.CreateProduct(ctx, Product{Name: "Soap", Price: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	require.True(t, p.Price.Equal(decimal.RequireFromString("12.50")))
}

func TestDeleteProductBlockedWhenReferenced(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, Product{Name: "Rice", Price: decimal.NewFromInt(3)})
	require.NoError(t, err)

	repo.refs["product"][p.ID] = true
	require.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), shared.ErrIntegrity)

	repo.refs["product"][p.ID] = false
	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
}

func TestClientRoundTrip(t *testing.T) {
	svc := NewService(newMemoryCatalogRepo())
	ctx := context.Background()

	c, err := svc.CreateClient(ctx, Client{Name: "Aziza", Phone: "+99890", Email: "aziza@example.com"})
	require.NoError(t, err)

	got, err := svc.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Aziza", got.Name)

	_, err = svc.GetClient(ctx, 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
