package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/platform/retry"
	"github.com/pscheid92/founderswall/internal/slug"
)

// LoginMaker returns the maker behind a provider identity, creating one on first login.
// New makers get a handle derived from their provider login.
func (s *Service) LoginMaker(ctx context.Context, id domain.Identity) (*domain.Maker, error) {
	if id.ProviderID == "" {
		return nil, domain.Invalid("provider identity is missing an id")
	}

	existing, err := s.makers.GetByProviderID(ctx, id.ProviderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrMakerNotFound) {
		return nil, fmt.Errorf("failed to look up maker: %w", err)
	}

	maker, err := retry.Do(ctx, conflictRetryPolicy(ctx, "handle"), classifyConflict, func(int) (*domain.Maker, error) {
		handle, err := s.handles.Allocate(ctx, slug.Make(id.Login, 0), s.makers.HandleExists)
		if err != nil {
			return nil, err
		}

		displayName := strings.TrimSpace(id.DisplayName)
		if displayName == "" {
			displayName = id.Login
		}

		return s.makers.Create(ctx, &domain.Maker{
			ID:          uuid.New(),
			ProviderID:  id.ProviderID,
			Handle:      handle,
			DisplayName: displayName,
			AvatarURL:   id.AvatarURL,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create maker: %w", err)
	}

	slog.InfoContext(ctx, "Maker joined the wall", "maker_id", maker.ID.String(), "handle", maker.Handle)
	s.invalidate(ctx, domain.CacheKeyStats)
	return maker, nil
}

func (s *Service) GetMaker(ctx context.Context, id uuid.UUID) (*domain.Maker, error) {
	return s.makers.GetByID(ctx, id)
}

func (s *Service) GetMakerByHandle(ctx context.Context, handle string) (*domain.Maker, error) {
	return s.makers.GetByHandle(ctx, handle)
}

// Mugshot is a maker's public page: the profile plus their products.
type Mugshot struct {
	Maker    *domain.Maker
	Products []domain.Product
}

func (s *Service) GetMugshot(ctx context.Context, handle string) (*Mugshot, error) {
	maker, err := s.makers.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListByMaker(ctx, maker.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &Mugshot{Maker: maker, Products: products}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, makerID uuid.UUID, update domain.ProfileUpdate) (*domain.Maker, error) {
	update.DisplayName = strings.TrimSpace(update.DisplayName)
	if update.DisplayName == "" {
		return nil, domain.Invalid("display name is required")
	}
	update.Bio = strings.TrimSpace(update.Bio)

	return s.makers.UpdateProfile(ctx, makerID, update)
}

// ToggleConnection follows the maker behind handle, or unfollows when already following.
func (s *Service) ToggleConnection(ctx context.Context, follower uuid.UUID, handle string) (domain.ToggleResult, error) {
	followee, err := s.makers.GetByHandle(ctx, handle)
	if err != nil {
		return domain.ToggleResult{}, err
	}
	if followee.ID == follower {
		return domain.ToggleResult{}, domain.ErrSelfConnection
	}

	return s.toggleSingle(ctx, domain.KindConnection, follower, followee.ID, domain.ChoiceFollow)
}
