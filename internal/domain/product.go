package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID
	MakerID   uuid.UUID
	Slug      string
	Name      string
	Tagline   string
	URL       string
	CreatedAt time.Time
}

// Pin is a short build-log entry on a product.
type Pin struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	MakerID   uuid.UUID
	Body      string
	CreatedAt time.Time
}

type ProductRepository interface {
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	ListByMaker(ctx context.Context, makerID uuid.UUID) ([]Product, error)
}

type PinRepository interface {
	Create(ctx context.Context, pin *Pin) (*Pin, error)
	// ListByProduct returns pins newest first.
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]Pin, error)
}
