package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/founderswall/internal/domain"
)

type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) WallStats(ctx context.Context, periodKey string) (domain.WallStats, error) {
	var s domain.WallStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM makers),
			(SELECT count(*) FROM products),
			(SELECT count(*) FROM launches),
			(SELECT count(*) FROM stories),
			(SELECT count(*) FROM launches WHERE period_key = $1)`, periodKey,
	).Scan(&s.Makers, &s.Products, &s.Launches, &s.Stories, &s.PeriodLaunches)
	if err != nil {
		return domain.WallStats{}, mapError(err, "read wall stats", nil)
	}
	return s, nil
}
