package domain

import (
	"context"

	"github.com/google/uuid"
)

// ChoiceKind names one kind of per-actor choice on a target.
type ChoiceKind string

const (
	KindReaction   ChoiceKind = "reaction"   // maker -> story, emoji
	KindUpvote     ChoiceKind = "upvote"     // maker -> launch, presence
	KindConnection ChoiceKind = "connection" // maker -> maker, presence
	KindPledge     ChoiceKind = "pledge"     // maker -> launch, support-type set
)

// Presence choices for kinds where the record itself is the choice.
const (
	ChoiceUp     = "up"
	ChoiceFollow = "follow"
)

// ChoiceStore runs a toggle inside one storage transaction. The record mutation and
// the aggregate recount either both commit or neither does.
type ChoiceStore interface {
	WithChoiceTx(ctx context.Context, kind ChoiceKind, fn func(tx ChoiceTx) error) error
}

type ChoiceTx interface {
	// LockTarget locks the target row for the rest of the transaction. It returns the
	// kind's not-found error when the target does not exist.
	LockTarget(ctx context.Context, target uuid.UUID) error
	Current(ctx context.Context, actor, target uuid.UUID) ([]string, error)
	Insert(ctx context.Context, actor, target uuid.UUID, choice string) error
	Update(ctx context.Context, actor, target uuid.UUID, choice string) error
	DeleteAll(ctx context.Context, actor, target uuid.UUID) error
	// Recount recomputes the target's aggregate from its records and stores it.
	Recount(ctx context.Context, target uuid.UUID) (map[string]int, error)
	CountRecords(ctx context.Context, target uuid.UUID) (int, error)
}

// ToggleResult is what a toggle hands back to the caller.
type ToggleResult struct {
	Kind      ChoiceKind
	Target    uuid.UUID
	Choices   []string
	Aggregate map[string]int
}

// Active reports whether the actor holds any choice after the toggle.
func (r ToggleResult) Active() bool {
	return len(r.Choices) > 0
}
