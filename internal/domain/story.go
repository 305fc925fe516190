package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Story struct {
	ID             uuid.UUID
	MakerID        uuid.UUID
	Slug           string
	Title          string
	Body           string
	ReactionCounts map[string]int
	CreatedAt      time.Time
}

type StoryRepository interface {
	GetBySlug(ctx context.Context, slug string) (*Story, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, s *Story) (*Story, error)
}

// Reactions is the closed set of emoji a story can be reacted to with.
var Reactions = []string{"🔥", "🚀", "👏", "❤️", "💡", "🙌"}

func IsReaction(emoji string) bool {
	return slices.Contains(Reactions, emoji)
}
