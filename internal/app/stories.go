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

type NewStory struct {
	Title string
	Body  string
}

func (s *Service) CreateStory(ctx context.Context, makerID uuid.UUID, in NewStory) (*domain.Story, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("story title is required")
	}

	story, err := retry.Do(ctx, conflictRetryPolicy(ctx, "story slug"), classifyConflict, func(int) (*domain.Story, error) {
		storySlug, err := s.storySlugs.Allocate(ctx, slug.Make(title, slug.StoryMaxLen), s.stories.SlugExists)
		if err != nil {
			return nil, err
		}
		return s.stories.Create(ctx, &domain.Story{
			ID:      uuid.New(),
			MakerID: makerID,
			Slug:    storySlug,
			Title:   title,
			Body:    strings.TrimSpace(in.Body),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	s.invalidate(ctx, domain.CacheKeyStats)
	return story, nil
}

// StoryPage is a story with its author.
type StoryPage struct {
	Story  *domain.Story
	Author *domain.Maker
}

func (s *Service) GetStory(ctx context.Context, storySlug string) (*StoryPage, error) {
	story, err := s.stories.GetBySlug(ctx, storySlug)
	if err != nil {
		return nil, err
	}

	author, err := s.makers.GetByID(ctx, story.MakerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load story author: %w", err)
	}
	return &StoryPage{Story: story, Author: author}, nil
}

// ReactToStory toggles the reader's emoji reaction. Reacting with the held emoji
// removes it; another emoji replaces it.
func (s *Service) ReactToStory(ctx context.Context, reader uuid.UUID, storySlug, emoji string) (domain.ToggleResult, error) {
	if !domain.IsReaction(emoji) {
		return domain.ToggleResult{}, domain.Invalid("emoji %q is not an allowed reaction", emoji)
	}

	story, err := s.stories.GetBySlug(ctx, storySlug)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	return s.toggleSingle(ctx, domain.KindReaction, reader, story.ID, emoji)
}
