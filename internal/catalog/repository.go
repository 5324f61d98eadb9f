package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook/stockbook/internal/shared"
)

// Repository persists catalog entities in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func mapRowErr(err error, entity string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, entity)
	}
	return err
}

func mapDeleteErr(err error, entity string) error {
	if shared.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s still referenced by transactional records", shared.ErrIntegrity, entity)
	}
	return err
}

// CreateProduct inserts a product.
func (r *Repository) CreateProduct(ctx context.Context, p Product) (Product, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO products (name, description, price, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4) RETURNING id`, p.Name, p.Description, p.Price, now).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// GetProduct fetches a product.
func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, price, created_at, updated_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, mapRowErr(err, "product")
	}
	return p, nil
}

// ListProducts lists products, optionally filtered by name search.
func (r *Repository) ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	search := "%" + filter.Search + "%"

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE ($1 = '%%' OR name ILIKE $1)`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name, description, price, created_at, updated_at FROM products
WHERE ($1 = '%%' OR name ILIKE $1) ORDER BY name LIMIT $2 OFFSET $3`, search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// UpdateProduct replaces product fields.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, p Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name = $1, description = $2, price = $3, updated_at = $4 WHERE id = $5`,
		p.Name, p.Description, p.Price, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	return nil
}

// DeleteProduct removes a product; the RESTRICT foreign keys on lines and
// inventory levels surface as ErrIntegrity.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err, "product")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	return nil
}

// CreateClient inserts a client.
func (r *Repository) CreateClient(ctx context.Context, c Client) (Client, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO clients (name, phone, email, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4) RETURNING id`, c.Name, c.Phone, c.Email, now).Scan(&c.ID)
	if err != nil {
		return Client{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

// GetClient fetches a client.
func (r *Repository) GetClient(ctx context.Context, id int64) (Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, email, created_at, updated_at FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Client{}, mapRowErr(err, "client")
	}
	return c, nil
}

// ListClients lists clients filtered by name, phone, or email.
func (r *Repository) ListClients(ctx context.Context, filter ListFilter) ([]Client, int, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	search := "%" + filter.Search + "%"

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients
WHERE ($1 = '%%' OR name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1)`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, email, created_at, updated_at FROM clients
WHERE ($1 = '%%' OR name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1) ORDER BY name LIMIT $2 OFFSET $3`,
		search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

// UpdateClient replaces client fields.
func (r *Repository) UpdateClient(ctx context.Context, id int64, c Client) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET name = $1, phone = $2, email = $3, updated_at = $4 WHERE id = $5`,
		c.Name, c.Phone, c.Email, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client", shared.ErrNotFound)
	}
	return nil
}

// DeleteClient removes a client; blocked while sales transactions reference it.
func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err, "client")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client", shared.ErrNotFound)
	}
	return nil
}

// CreateSupplier inserts a supplier.
func (r *Repository) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (name, phone, email, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4) RETURNING id`, s.Name, s.Phone, s.Email, now).Scan(&s.ID)
	if err != nil {
		return Supplier{}, err
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, nil
}

// GetSupplier fetches a supplier.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, email, created_at, updated_at FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Supplier{}, mapRowErr(err, "supplier")
	}
	return s, nil
}

// ListSuppliers lists suppliers filtered by name, phone, or email.
func (r *Repository) ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, int, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	search := "%" + filter.Search + "%"

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers
WHERE ($1 = '%%' OR name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1)`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, email, created_at, updated_at FROM suppliers
WHERE ($1 = '%%' OR name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1) ORDER BY name LIMIT $2 OFFSET $3`,
		search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

// UpdateSupplier replaces supplier fields.
func (r *Repository) UpdateSupplier(ctx context.Context, id int64, s Supplier) error {
	tag, err := r.pool.Exec(ctx, `UPDATE suppliers SET name = $1, phone = $2, email = $3, updated_at = $4 WHERE id = $5`,
		s.Name, s.Phone, s.Email, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier", shared.ErrNotFound)
	}
	return nil
}

// DeleteSupplier removes a supplier; blocked while purchases reference it.
func (r *Repository) DeleteSupplier(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err, "supplier")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier", shared.ErrNotFound)
	}
	return nil
}
