package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/period"
	"github.com/pscheid92/founderswall/internal/platform/retry"
	"github.com/pscheid92/founderswall/internal/slug"
)

// SubmitLaunch puts a product on the board for the current period. The maker needs
// lifetime access and must own the product; a product launches at most once per period.
func (s *Service) SubmitLaunch(ctx context.Context, makerID uuid.UUID, productSlug string) (*domain.Launch, error) {
	maker, err := s.makers.GetByID(ctx, makerID)
	if err != nil {
		return nil, err
	}
	if !maker.LifetimeAccess {
		return nil, domain.ErrLifetimeAccessRequired
	}

	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	if product.MakerID != makerID {
		return nil, domain.ErrNotProductOwner
	}

	window := s.CurrentPeriod()
	launch, err := retry.Do(ctx, conflictRetryPolicy(ctx, "case id"), classifyConflict, func(int) (*domain.Launch, error) {
		maxCaseID, err := s.launches.MaxCaseID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read highest case id: %w", err)
		}
		return s.launches.Create(ctx, &domain.Launch{
			ID:          uuid.New(),
			CaseID:      slug.NextCaseID(maxCaseID, s.rand),
			ProductID:   product.ID,
			MakerID:     makerID,
			PeriodKey:   window.Key(),
			PeriodStart: window.Start,
			PeriodEnd:   window.End,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit launch: %w", err)
	}

	slog.InfoContext(ctx, "Launch submitted", "case_id", launch.CaseID, "product", product.Slug, "period", launch.PeriodKey)
	s.invalidate(ctx, domain.LaunchBoardKey(window.Key()), domain.CacheKeyStats)
	return launch, nil
}

func (s *Service) GetLaunch(ctx context.Context, id uuid.UUID) (*domain.Launch, error) {
	return s.launches.GetByID(ctx, id)
}

// Board is the current period's launch board.
type Board struct {
	Window  period.Window
	Entries []domain.LaunchEntry
}

// LaunchBoard serves the current period's launches, cached for the cache TTL.
func (s *Service) LaunchBoard(ctx context.Context) (Board, error) {
	window := s.CurrentPeriod()
	key := domain.LaunchBoardKey(window.Key())

	entries, err := s.boardCache.GetOrLoad(ctx, key, func(ctx context.Context) ([]domain.LaunchEntry, error) {
		return s.launches.ListByPeriod(ctx, window.Key())
	})
	if err != nil {
		return Board{}, fmt.Errorf("failed to load launch board: %w", err)
	}
	return Board{Window: window, Entries: entries}, nil
}

// ToggleUpvote upvotes a launch or withdraws the upvote. Voting closes with the period.
func (s *Service) ToggleUpvote(ctx context.Context, voter, launchID uuid.UUID) (domain.ToggleResult, error) {
	launch, err := s.openLaunch(ctx, launchID)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	result, err := s.toggleSingle(ctx, domain.KindUpvote, voter, launch.ID, domain.ChoiceUp)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	s.invalidate(ctx, domain.LaunchBoardKey(launch.PeriodKey))
	return result, nil
}

// SetPledges replaces the supporter's pledge set on a launch. An empty set withdraws.
func (s *Service) SetPledges(ctx context.Context, supporter, launchID uuid.UUID, supportTypes []string) (domain.ToggleResult, error) {
	for _, st := range supportTypes {
		if _, err := domain.ParseSupportType(st); err != nil {
			return domain.ToggleResult{}, err
		}
	}

	launch, err := s.openLaunch(ctx, launchID)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	result, err := s.toggleMulti(ctx, domain.KindPledge, supporter, launch.ID, supportTypes)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	s.invalidate(ctx, domain.LaunchBoardKey(launch.PeriodKey))
	return result, nil
}

func (s *Service) openLaunch(ctx context.Context, launchID uuid.UUID) (*domain.Launch, error) {
	launch, err := s.launches.GetByID(ctx, launchID)
	if err != nil {
		return nil, err
	}
	if !s.clock.Now().Before(launch.PeriodEnd) {
		return nil, domain.ErrVotingClosed
	}
	return launch, nil
}
