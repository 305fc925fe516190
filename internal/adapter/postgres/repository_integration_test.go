package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakerRepo_CreateAndLookup(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewMakerRepo(pool)
	ctx := context.Background()

	created := createTestMaker(t, pool, "ada")
	assert.False(t, created.LifetimeAccess)
	assert.False(t, created.CreatedAt.IsZero())

	byHandle, err := repo.GetByHandle(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byHandle.ID)

	byProvider, err := repo.GetByProviderID(ctx, "gh-ada")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byProvider.ID)

	exists, err := repo.HandleExists(ctx, "ada")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrMakerNotFound)
}

func TestMakerRepo_DuplicateHandleIsConflict(t *testing.T) {
	pool := setupTestDB(t)
	createTestMaker(t, pool, "ada")

	_, err := NewMakerRepo(pool).Create(context.Background(), &domain.Maker{
		ID: uuid.New(), ProviderID: "gh-other", Handle: "ada", DisplayName: "Ada",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMakerRepo_UpdateProfile(t *testing.T) {
	pool := setupTestDB(t)
	m := createTestMaker(t, pool, "ada")

	updated, err := NewMakerRepo(pool).UpdateProfile(context.Background(), m.ID, domain.ProfileUpdate{
		DisplayName: "Ada L.", Bio: "engines", WebsiteURL: "https://example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.DisplayName)
	assert.Equal(t, "engines", updated.Bio)

	_, err = NewMakerRepo(pool).UpdateProfile(context.Background(), uuid.New(), domain.ProfileUpdate{DisplayName: "x"})
	assert.ErrorIs(t, err, domain.ErrMakerNotFound)
}

func TestProductRepo_AndPins(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	m := createTestMaker(t, pool, "ada")
	p := createTestProduct(t, pool, m.ID, "engine")

	products := NewProductRepo(pool)
	got, err := products.GetBySlug(ctx, "engine")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = products.Create(ctx, &domain.Product{ID: uuid.New(), MakerID: m.ID, Slug: "engine", Name: "dup"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	list, err := products.ListByMaker(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	pins := NewPinRepo(pool)
	for _, body := range []string{"first", "second", "third"} {
		_, err := pins.Create(ctx, &domain.Pin{ID: uuid.New(), ProductID: p.ID, MakerID: m.ID, Body: body})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	got2, err := pins.ListByProduct(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, got2, 2)
	assert.Equal(t, "third", got2[0].Body, "newest first")
	assert.Equal(t, "second", got2[1].Body)
}

func newTestLaunch(m *domain.Maker, p *domain.Product, caseID, periodKey string) *domain.Launch {
	start := time.Date(2024, 6, 13, 8, 0, 0, 0, time.UTC)
	return &domain.Launch{
		ID: uuid.New(), CaseID: caseID, ProductID: p.ID, MakerID: m.ID,
		PeriodKey: periodKey, PeriodStart: start, PeriodEnd: start.Add(96 * time.Hour),
	}
}

func TestLaunchRepo_CaseIDsAndPeriodUniqueness(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewLaunchRepo(pool)
	ctx := context.Background()
	m := createTestMaker(t, pool, "ada")
	p1 := createTestProduct(t, pool, m.ID, "one")
	p2 := createTestProduct(t, pool, m.ID, "two")

	maxID, err := repo.MaxCaseID(ctx)
	require.NoError(t, err)
	assert.Empty(t, maxID)

	_, err = repo.Create(ctx, newTestLaunch(m, p1, "L999", "2024-06-13T08"))
	require.NoError(t, err)
	created, err := repo.Create(ctx, newTestLaunch(m, p2, "L1000", "2024-06-13T08"))
	require.NoError(t, err)
	assert.Empty(t, created.PledgeCounts)

	maxID, err = repo.MaxCaseID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "L1000", maxID, "numeric order, not lexical")

	_, err = repo.Create(ctx, newTestLaunch(m, p1, "L1001", "2024-06-13T08"))
	assert.ErrorIs(t, err, domain.ErrAlreadyLaunched)

	_, err = repo.Create(ctx, newTestLaunch(m, p1, "L1000", "2024-06-17T08"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrAlreadyLaunched)

	board, err := repo.ListByPeriod(ctx, "2024-06-13T08")
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "ada", board[0].MakerHandle)
	assert.Equal(t, "one", board[0].ProductSlug)
}

func TestStoryRepo(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewStoryRepo(pool)
	ctx := context.Background()
	m := createTestMaker(t, pool, "ada")

	s, err := repo.Create(ctx, &domain.Story{ID: uuid.New(), MakerID: m.ID, Slug: "how-we-launched", Title: "How we launched"})
	require.NoError(t, err)
	assert.Empty(t, s.ReactionCounts)

	exists, err := repo.SlugExists(ctx, "how-we-launched")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrStoryNotFound)
}

func TestPaymentRepo_IdempotentGrant(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewPaymentRepo(pool)
	ctx := context.Background()
	m := createTestMaker(t, pool, "ada")

	p := domain.Payment{PaymentID: "pay_1", MakerID: m.ID, AmountCents: 4900, Currency: "usd", ReceivedAt: time.Now()}

	granted, err := repo.RecordAndGrant(ctx, p)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = repo.RecordAndGrant(ctx, p)
	require.NoError(t, err)
	assert.False(t, granted)

	got, err := NewMakerRepo(pool).GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.LifetimeAccess)
}

func TestStatsRepo(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	m := createTestMaker(t, pool, "ada")
	p := createTestProduct(t, pool, m.ID, "engine")
	_, err := NewLaunchRepo(pool).Create(ctx, newTestLaunch(m, p, "L001", "2024-06-13T08"))
	require.NoError(t, err)

	stats, err := NewStatsRepo(pool).WallStats(ctx, "2024-06-13T08")
	require.NoError(t, err)
	assert.Equal(t, domain.WallStats{Makers: 1, Products: 1, Launches: 1, Stories: 0, PeriodLaunches: 1}, stats)
}
