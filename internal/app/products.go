package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/platform/retry"
	"github.com/pscheid92/founderswall/internal/slug"
)

const DefaultPinLimit = 50

type NewProduct struct {
	Name    string
	Tagline string
	URL     string
}

func (s *Service) CreateProduct(ctx context.Context, makerID uuid.UUID, in NewProduct) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("product name is required")
	}

	product, err := retry.Do(ctx, conflictRetryPolicy(ctx, "product slug"), classifyConflict, func(int) (*domain.Product, error) {
		productSlug, err := s.productSlugs.Allocate(ctx, slug.Make(name, 0), s.products.SlugExists)
		if err != nil {
			return nil, err
		}
		return s.products.Create(ctx, &domain.Product{
			ID:      uuid.New(),
			MakerID: makerID,
			Slug:    productSlug,
			Name:    name,
			Tagline: strings.TrimSpace(in.Tagline),
			URL:     strings.TrimSpace(in.URL),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx, domain.CacheKeyStats)
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, productSlug string) (*domain.Product, error) {
	return s.products.GetBySlug(ctx, productSlug)
}

// AddPin appends a build-log entry. Only the product's maker may pin.
func (s *Service) AddPin(ctx context.Context, makerID uuid.UUID, productSlug, body string) (*domain.Pin, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.Invalid("pin body is required")
	}

	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	if product.MakerID != makerID {
		return nil, domain.ErrNotProductOwner
	}

	return s.pins.Create(ctx, &domain.Pin{
		ID:        uuid.New(),
		ProductID: product.ID,
		MakerID:   makerID,
		Body:      body,
	})
}

func (s *Service) ListPins(ctx context.Context, productSlug string, limit int) ([]domain.Pin, error) {
	if limit <= 0 || limit > DefaultPinLimit {
		limit = DefaultPinLimit
	}

	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	return s.pins.ListByProduct(ctx, product.ID, limit)
}
