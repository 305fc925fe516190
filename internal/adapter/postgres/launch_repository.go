package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/founderswall/internal/domain"
)

const launchColumns = `l.id, l.case_id, l.product_id, l.maker_id, l.period_key, l.period_start, l.period_end,
	l.upvote_count, l.pledge_counts, l.created_at`

const productPeriodConstraint = "launches_product_period_key"

type LaunchRepo struct {
	pool *pgxpool.Pool
}

func NewLaunchRepo(pool *pgxpool.Pool) *LaunchRepo {
	return &LaunchRepo{pool: pool}
}

func launchDest(l *domain.Launch) []any {
	return []any{&l.ID, &l.CaseID, &l.ProductID, &l.MakerID, &l.PeriodKey, &l.PeriodStart, &l.PeriodEnd,
		&l.UpvoteCount, &l.PledgeCounts, &l.CreatedAt}
}

func (r *LaunchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Launch, error) {
	var l domain.Launch
	err := r.pool.QueryRow(ctx, `SELECT `+launchColumns+` FROM launches l WHERE l.id = $1`, id).Scan(launchDest(&l)...)
	if err != nil {
		return nil, mapError(err, "get launch", domain.ErrLaunchNotFound)
	}
	return &l, nil
}

// MaxCaseID orders well-formed IDs by digit count, then lexically, which is numeric
// order for IDs without extra leading zeros.
func (r *LaunchRepo) MaxCaseID(ctx context.Context) (string, error) {
	var caseID string
	err := r.pool.QueryRow(ctx, `
		SELECT case_id FROM launches
		WHERE case_id ~ '^L[0-9]+$'
		ORDER BY length(case_id) DESC, case_id DESC
		LIMIT 1`).Scan(&caseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError(err, "read max case id", nil)
	}
	return caseID, nil
}

func (r *LaunchRepo) Create(ctx context.Context, l *domain.Launch) (*domain.Launch, error) {
	created := *l
	err := r.pool.QueryRow(ctx, `
		INSERT INTO launches (id, case_id, product_id, maker_id, period_key, period_start, period_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING upvote_count, pledge_counts, created_at`,
		l.ID, l.CaseID, l.ProductID, l.MakerID, l.PeriodKey, l.PeriodStart, l.PeriodEnd,
	).Scan(&created.UpvoteCount, &created.PledgeCounts, &created.CreatedAt)

	if constraintName(err) == productPeriodConstraint {
		return nil, fmt.Errorf("create launch %s: %w", l.CaseID, domain.ErrAlreadyLaunched)
	}
	if err != nil {
		return nil, mapError(err, "create launch", nil)
	}
	return &created, nil
}

// ListByPeriod returns the board ordered by upvotes, earliest submission first on ties.
func (r *LaunchRepo) ListByPeriod(ctx context.Context, periodKey string) ([]domain.LaunchEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+launchColumns+`, p.slug, p.name, p.tagline, m.handle
		FROM launches l
		JOIN products p ON p.id = l.product_id
		JOIN makers m ON m.id = l.maker_id
		WHERE l.period_key = $1
		ORDER BY l.upvote_count DESC, l.created_at ASC, l.case_id ASC`, periodKey)
	if err != nil {
		return nil, mapError(err, "list launches", nil)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LaunchEntry, error) {
		var e domain.LaunchEntry
		dest := append(launchDest(&e.Launch), &e.ProductSlug, &e.ProductName, &e.Tagline, &e.MakerHandle)
		err := row.Scan(dest...)
		return e, err
	})
	if err != nil {
		return nil, mapError(err, "scan launches", nil)
	}
	return entries, nil
}
