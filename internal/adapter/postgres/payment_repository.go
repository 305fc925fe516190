package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/founderswall/internal/domain"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) RecordAndGrant(ctx context.Context, p domain.Payment) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, mapError(err, "begin transaction", nil)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO payments (payment_id, maker_id, amount_cents, currency, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (payment_id) DO NOTHING`,
		p.PaymentID, p.MakerID, p.AmountCents, p.Currency, p.ReceivedAt)
	if err != nil {
		return false, mapError(err, "record payment", nil)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	tag, err = tx.Exec(ctx, `UPDATE makers SET lifetime_access = TRUE, updated_at = now() WHERE id = $1`, p.MakerID)
	if err != nil {
		return false, mapError(err, "grant lifetime access", nil)
	}
	if tag.RowsAffected() == 0 {
		return false, fmt.Errorf("grant lifetime access: %w", domain.ErrMakerNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, mapError(err, "commit payment", nil)
	}
	return true, nil
}
