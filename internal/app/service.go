package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/founderswall/internal/cache"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/period"
	"github.com/pscheid92/founderswall/internal/platform/retry"
	"github.com/pscheid92/founderswall/internal/slug"
)

// conflictPolicy retries a slug or case-ID allocation once when the insert loses a
// uniqueness race. A second conflict is returned to the caller.
var conflictPolicy = retry.Policy{MaxAttempts: 2, InitialBackoff: 10 * time.Millisecond}

// ToggleRecorder observes applied toggles.
type ToggleRecorder interface {
	ToggleApplied(kind domain.ChoiceKind, mutation string)
	AggregateRecounted(kind domain.ChoiceKind)
}

type Dependencies struct {
	Makers   domain.MakerRepository
	Products domain.ProductRepository
	Pins     domain.PinRepository
	Launches domain.LaunchRepository
	Stories  domain.StoryRepository
	Stats    domain.StatsRepository
	Payments domain.PaymentRepository
	Choices  domain.ChoiceStore

	BoardCache *cache.TTL[[]domain.LaunchEntry]
	StatsCache *cache.TTL[domain.WallStats]

	// Invalidator may be nil for a single instance.
	Invalidator domain.CacheInvalidator
	// Toggles may be nil.
	Toggles ToggleRecorder

	Clock clockwork.Clock
	Rand  slug.Intn
}

// Service is the application layer, the only component that references multiple
// domain components.
type Service struct {
	makers   domain.MakerRepository
	products domain.ProductRepository
	pins     domain.PinRepository
	launches domain.LaunchRepository
	stories  domain.StoryRepository
	stats    domain.StatsRepository
	payments domain.PaymentRepository
	choices  domain.ChoiceStore

	boardCache  *cache.TTL[[]domain.LaunchEntry]
	statsCache  *cache.TTL[domain.WallStats]
	invalidator domain.CacheInvalidator
	toggles     ToggleRecorder

	clock clockwork.Clock
	rand  slug.Intn

	handles      *slug.Allocator
	productSlugs *slug.Allocator
	storySlugs   *slug.Allocator
}

func NewService(d Dependencies) *Service {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	boardCache := d.BoardCache
	if boardCache == nil {
		boardCache = cache.New[[]domain.LaunchEntry](cache.DefaultTTL, clock)
	}
	statsCache := d.StatsCache
	if statsCache == nil {
		statsCache = cache.New[domain.WallStats](cache.DefaultTTL, clock)
	}

	return &Service{
		makers:      d.Makers,
		products:    d.Products,
		pins:        d.Pins,
		launches:    d.Launches,
		stories:     d.Stories,
		stats:       d.Stats,
		payments:    d.Payments,
		choices:     d.Choices,
		boardCache:  boardCache,
		statsCache:  statsCache,
		invalidator: d.Invalidator,
		toggles:     d.Toggles,
		clock:       clock,
		rand:        d.Rand,

		handles:      &slug.Allocator{Policy: slug.PolicyCounter, FallbackPrefix: "maker-", Clock: clock, Rand: d.Rand},
		productSlugs: &slug.Allocator{Policy: slug.PolicyCounter, FallbackPrefix: "product-", Clock: clock, Rand: d.Rand},
		storySlugs:   &slug.Allocator{Policy: slug.PolicyTimestamp, FallbackPrefix: "story-", Clock: clock, Rand: d.Rand},
	}
}

// CurrentPeriod returns the launch window open right now.
func (s *Service) CurrentPeriod() period.Window {
	return period.Current(s.clock.Now())
}

// Now exposes the service clock so handlers render countdowns against the same time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// classifyConflict retries plain uniqueness conflicts and stops on everything else.
func classifyConflict(err error) retry.Action {
	if errors.Is(err, domain.ErrAlreadyLaunched) {
		return retry.Stop
	}
	if errors.Is(err, domain.ErrConflict) {
		return retry.Retry
	}
	return retry.Stop
}

func logConflictRetry(ctx context.Context, what string) func(int, error, time.Duration) {
	return func(attempt int, err error, backoff time.Duration) {
		slog.WarnContext(ctx, "Allocation lost a uniqueness race, retrying",
			"what", what, "attempt", attempt, "backoff", backoff, "error", err)
	}
}

func conflictRetryPolicy(ctx context.Context, what string) retry.Policy {
	p := conflictPolicy
	p.OnRetry = logConflictRetry(ctx, what)
	return p
}
