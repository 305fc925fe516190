package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/founderswall/internal/domain"
)

const storyColumns = `id, maker_id, slug, title, body, reaction_counts, created_at`

type StoryRepo struct {
	pool *pgxpool.Pool
}

func NewStoryRepo(pool *pgxpool.Pool) *StoryRepo {
	return &StoryRepo{pool: pool}
}

func (r *StoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Story, error) {
	var s domain.Story
	err := r.pool.QueryRow(ctx, `SELECT `+storyColumns+` FROM stories WHERE slug = $1`, slug).
		Scan(&s.ID, &s.MakerID, &s.Slug, &s.Title, &s.Body, &s.ReactionCounts, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err, "get story", domain.ErrStoryNotFound)
	}
	return &s, nil
}

func (r *StoryRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, mapError(err, "check story slug", nil)
	}
	return exists, nil
}

func (r *StoryRepo) Create(ctx context.Context, s *domain.Story) (*domain.Story, error) {
	created := *s
	err := r.pool.QueryRow(ctx, `
		INSERT INTO stories (id, maker_id, slug, title, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING reaction_counts, created_at`,
		s.ID, s.MakerID, s.Slug, s.Title, s.Body).Scan(&created.ReactionCounts, &created.CreatedAt)
	if err != nil {
		return nil, mapError(err, "create story", nil)
	}
	return &created, nil
}
