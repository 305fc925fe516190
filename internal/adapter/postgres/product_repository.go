package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/founderswall/internal/domain"
)

const productColumns = `id, maker_id, slug, name, tagline, url, created_at`

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.MakerID, &p.Slug, &p.Name, &p.Tagline, &p.URL, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		return nil, mapError(err, "get product by slug", domain.ErrProductNotFound)
	}
	return p, nil
}

func (r *ProductRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, mapError(err, "check product slug", nil)
	}
	return exists, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, maker_id, slug, name, tagline, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		p.ID, p.MakerID, p.Slug, p.Name, p.Tagline, p.URL)

	created, err := scanProduct(row)
	if err != nil {
		return nil, mapError(err, "create product", nil)
	}
	return created, nil
}

func (r *ProductRepo) ListByMaker(ctx context.Context, makerID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE maker_id = $1 ORDER BY created_at DESC`, makerID)
	if err != nil {
		return nil, mapError(err, "list products", nil)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		p, err := scanProduct(row)
		if err != nil {
			return domain.Product{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, mapError(err, "scan products", nil)
	}
	return products, nil
}

type PinRepo struct {
	pool *pgxpool.Pool
}

func NewPinRepo(pool *pgxpool.Pool) *PinRepo {
	return &PinRepo{pool: pool}
}

func (r *PinRepo) Create(ctx context.Context, pin *domain.Pin) (*domain.Pin, error) {
	created := *pin
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pins (id, product_id, maker_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		pin.ID, pin.ProductID, pin.MakerID, pin.Body).Scan(&created.CreatedAt)
	if err != nil {
		return nil, mapError(err, "create pin", nil)
	}
	return &created, nil
}

func (r *PinRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]domain.Pin, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, maker_id, body, created_at
		FROM pins
		WHERE product_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`, productID, limit)
	if err != nil {
		return nil, mapError(err, "list pins", nil)
	}

	pins, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Pin, error) {
		var p domain.Pin
		err := row.Scan(&p.ID, &p.ProductID, &p.MakerID, &p.Body, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, mapError(err, "scan pins", nil)
	}
	return pins, nil
}
