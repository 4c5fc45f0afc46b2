package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/ids"
	"atelier/storefront/internal/models"
)

const productColumns = `
	id, name, description, price, category, stock, status, image, tags, sku,
	created_at, updated_at
`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the whole catalog, newest first. The collection layer relies
// on this ordering for its initial snapshot.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, &apperr.DataAccessError{Op: "list", Table: "products", Err: err}
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, &apperr.DataAccessError{Op: "scan", Table: "products", Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.DataAccessError{Op: "list", Table: "products", Err: err}
	}
	return out, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, apperr.ErrNotFound
		}
		return models.Product{}, &apperr.DataAccessError{Op: "get", Table: "products", Err: err}
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ID == "" {
		p.ID = ids.New()
	}

	const query = `
		INSERT INTO products (id, name, description, price, category, stock, status, image, tags, sku, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + productColumns

	created, err := scanProduct(r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Stock, p.Status, p.Image, p.Tags, p.SKU,
	))
	if err != nil {
		return models.Product{}, &apperr.DataAccessError{Op: "insert", Table: "products", Err: err}
	}
	return created, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, p models.Product) (models.Product, error) {
	const query = `
		UPDATE products SET
			name = $2, description = $3, price = $4, category = $5, stock = $6,
			status = $7, image = $8, tags = $9, sku = $10, updated_at = $11
		WHERE id = $1
		RETURNING ` + productColumns

	updated, err := scanProduct(r.pool.QueryRow(ctx, query,
		id, p.Name, p.Description, p.Price, p.Category, p.Stock, p.Status, p.Image, p.Tags, p.SKU, time.Now().UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, apperr.ErrNotFound
		}
		return models.Product{}, &apperr.DataAccessError{Op: "update", Table: "products", Err: err}
	}
	return updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return &apperr.DataAccessError{Op: "delete", Table: "products", Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.Stock,
		&p.Status,
		&p.Image,
		&p.Tags,
		&p.SKU,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
