// Package toggle decides how a repeated per-actor choice changes state.
//
// A single-choice target holds at most one choice per actor: choosing nothing inserts,
// choosing the held choice again removes it, choosing something else updates it in
// place. A multi-choice target treats every request as the full replacement set.
// The package only decides; callers apply the mutation and recount the aggregate in
// the same transaction.
package toggle

import (
	"fmt"
	"slices"

	"github.com/pscheid92/founderswall/internal/domain"
)

var ErrEmptyChoice = fmt.Errorf("%w: choice must not be empty", domain.ErrInvalidInput)

type Mutation int

const (
	Insert Mutation = iota + 1
	Delete
	Update
)

func (m Mutation) String() string {
	switch m {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Update:
		return "update"
	default:
		return "unknown"
	}
}

// Outcome is the decision for a single-choice toggle. Next is nil when the actor ends
// up holding no choice.
type Outcome struct {
	Mutation Mutation
	Next     *string
}

// Single decides the transition from current (nil when the actor holds no choice).
func Single(current *string, requested string) (Outcome, error) {
	if requested == "" {
		return Outcome{}, ErrEmptyChoice
	}

	switch {
	case current == nil:
		return Outcome{Mutation: Insert, Next: &requested}, nil
	case *current == requested:
		return Outcome{Mutation: Delete}, nil
	default:
		return Outcome{Mutation: Update, Next: &requested}, nil
	}
}

// MultiOutcome replaces the actor's whole set: delete every record, then insert Next.
type MultiOutcome struct {
	Next    []string
	Changed bool
}

// Multi decides a replace-set transition. Duplicates in requested are dropped while
// keeping first-seen order. An empty requested set clears the actor's choices.
func Multi(current, requested []string) (MultiOutcome, error) {
	next := make([]string, 0, len(requested))
	for _, c := range requested {
		if c == "" {
			return MultiOutcome{}, ErrEmptyChoice
		}
		if !slices.Contains(next, c) {
			next = append(next, c)
		}
	}

	return MultiOutcome{Next: next, Changed: !sameSet(current, next)}, nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := slices.Sorted(slices.Values(a))
	sb := slices.Sorted(slices.Values(b))
	return slices.Equal(sa, sb)
}

// Tally recomputes an aggregate from the full list of choices on a target.
func Tally(choices []string) map[string]int {
	counts := make(map[string]int, len(choices))
	for _, c := range choices {
		counts[c]++
	}
	return counts
}

// Total sums an aggregate.
func Total(counts map[string]int) int {
	n := 0
	for _, v := range counts {
		n += v
	}
	return n
}
