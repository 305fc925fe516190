package slug

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/jonboulle/clockwork"
)

// Policy selects how a taken slug is varied.
type Policy int

const (
	// PolicyCounter probes candidate, candidate-1, candidate-2, ...
	PolicyCounter Policy = iota
	// PolicyTimestamp probes candidate, then candidate-<unix millis>, then counter
	// suffixes on the timestamped slug.
	PolicyTimestamp
)

const DefaultMaxAttempts = 5

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Intn is the randomness the allocator needs. *rand.Rand from math/rand/v2 satisfies it.
type Intn interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Allocator finds a free slug by probing variations of a candidate. When every probe
// is taken it returns FallbackPrefix plus a random four-digit number without probing;
// the storage uniqueness constraint catches the rare collision.
type Allocator struct {
	Policy         Policy
	MaxAttempts    int
	FallbackPrefix string
	Clock          clockwork.Clock
	Rand           Intn
}

func (a *Allocator) Allocate(ctx context.Context, candidate string, exists ExistsFunc) (string, error) {
	if candidate == "" {
		return a.fallback(), nil
	}

	probe := a.prober(candidate)
	for i := range a.maxAttempts() {
		s := probe(i)
		taken, err := exists(ctx, s)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", s, err)
		}
		if !taken {
			return s, nil
		}
	}
	return a.fallback(), nil
}

func (a *Allocator) prober(candidate string) func(i int) string {
	if a.Policy == PolicyTimestamp {
		stamped := candidate + "-" + strconv.FormatInt(a.clock().Now().UnixMilli(), 10)
		return func(i int) string {
			switch i {
			case 0:
				return candidate
			case 1:
				return stamped
			default:
				return stamped + "-" + strconv.Itoa(i-1)
			}
		}
	}
	return func(i int) string {
		if i == 0 {
			return candidate
		}
		return candidate + "-" + strconv.Itoa(i)
	}
}

func (a *Allocator) fallback() string {
	return fmt.Sprintf("%s%04d", a.FallbackPrefix, a.rand().IntN(10000))
}

func (a *Allocator) maxAttempts() int {
	if a.MaxAttempts < 1 {
		return DefaultMaxAttempts
	}
	return a.MaxAttempts
}

func (a *Allocator) clock() clockwork.Clock {
	if a.Clock == nil {
		return clockwork.NewRealClock()
	}
	return a.Clock
}

func (a *Allocator) rand() Intn {
	if a.Rand == nil {
		return globalRand{}
	}
	return a.Rand
}
