package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/founderswall/internal/domain"
)

const makerColumns = `id, provider_id, handle, display_name, bio, avatar_url, website_url,
	lifetime_access, follower_count, created_at, updated_at`

type MakerRepo struct {
	pool *pgxpool.Pool
}

func NewMakerRepo(pool *pgxpool.Pool) *MakerRepo {
	return &MakerRepo{pool: pool}
}

func scanMaker(row pgx.Row) (*domain.Maker, error) {
	var m domain.Maker
	err := row.Scan(&m.ID, &m.ProviderID, &m.Handle, &m.DisplayName, &m.Bio, &m.AvatarURL, &m.WebsiteURL,
		&m.LifetimeAccess, &m.FollowerCount, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MakerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Maker, error) {
	m, err := scanMaker(r.pool.QueryRow(ctx, `SELECT `+makerColumns+` FROM makers WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "get maker by ID", domain.ErrMakerNotFound)
	}
	return m, nil
}

func (r *MakerRepo) GetByHandle(ctx context.Context, handle string) (*domain.Maker, error) {
	m, err := scanMaker(r.pool.QueryRow(ctx, `SELECT `+makerColumns+` FROM makers WHERE handle = $1`, handle))
	if err != nil {
		return nil, mapError(err, "get maker by handle", domain.ErrMakerNotFound)
	}
	return m, nil
}

func (r *MakerRepo) GetByProviderID(ctx context.Context, providerID string) (*domain.Maker, error) {
	m, err := scanMaker(r.pool.QueryRow(ctx, `SELECT `+makerColumns+` FROM makers WHERE provider_id = $1`, providerID))
	if err != nil {
		return nil, mapError(err, "get maker by provider ID", domain.ErrMakerNotFound)
	}
	return m, nil
}

func (r *MakerRepo) HandleExists(ctx context.Context, handle string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM makers WHERE handle = $1)`, handle).Scan(&exists)
	if err != nil {
		return false, mapError(err, "check handle", nil)
	}
	return exists, nil
}

func (r *MakerRepo) Create(ctx context.Context, m *domain.Maker) (*domain.Maker, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO makers (id, provider_id, handle, display_name, bio, avatar_url, website_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+makerColumns,
		m.ID, m.ProviderID, m.Handle, m.DisplayName, m.Bio, m.AvatarURL, m.WebsiteURL)

	created, err := scanMaker(row)
	if err != nil {
		return nil, mapError(err, "create maker", nil)
	}
	return created, nil
}

func (r *MakerRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Maker, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE makers
		SET display_name = $2, bio = $3, avatar_url = $4, website_url = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+makerColumns,
		id, update.DisplayName, update.Bio, update.AvatarURL, update.WebsiteURL)

	m, err := scanMaker(row)
	if err != nil {
		return nil, mapError(err, "update maker profile", domain.ErrMakerNotFound)
	}
	return m, nil
}
