package app

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/toggle"
)

// --- Mock MakerRepository ---

type mockMakerRepo struct {
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Maker, error)
	getByHandleFn     func(ctx context.Context, handle string) (*domain.Maker, error)
	getByProviderIDFn func(ctx context.Context, providerID string) (*domain.Maker, error)
	handleExistsFn    func(ctx context.Context, handle string) (bool, error)
	createFn          func(ctx context.Context, m *domain.Maker) (*domain.Maker, error)
	updateProfileFn   func(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Maker, error)
}

func (m *mockMakerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Maker, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrMakerNotFound
}

func (m *mockMakerRepo) GetByHandle(ctx context.Context, handle string) (*domain.Maker, error) {
	if m.getByHandleFn != nil {
		return m.getByHandleFn(ctx, handle)
	}
	return nil, domain.ErrMakerNotFound
}

func (m *mockMakerRepo) GetByProviderID(ctx context.Context, providerID string) (*domain.Maker, error) {
	if m.getByProviderIDFn != nil {
		return m.getByProviderIDFn(ctx, providerID)
	}
	return nil, domain.ErrMakerNotFound
}

func (m *mockMakerRepo) HandleExists(ctx context.Context, handle string) (bool, error) {
	if m.handleExistsFn != nil {
		return m.handleExistsFn(ctx, handle)
	}
	return false, nil
}

func (m *mockMakerRepo) Create(ctx context.Context, maker *domain.Maker) (*domain.Maker, error) {
	if m.createFn != nil {
		return m.createFn(ctx, maker)
	}
	return maker, nil
}

func (m *mockMakerRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Maker, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, update)
	}
	return &domain.Maker{ID: id, DisplayName: update.DisplayName, Bio: update.Bio}, nil
}

// --- Mock ProductRepository ---

type mockProductRepo struct {
	getBySlugFn   func(ctx context.Context, slug string) (*domain.Product, error)
	slugExistsFn  func(ctx context.Context, slug string) (bool, error)
	createFn      func(ctx context.Context, p *domain.Product) (*domain.Product, error)
	listByMakerFn func(ctx context.Context, makerID uuid.UUID) ([]domain.Product, error)
}

func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockProductRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	if m.slugExistsFn != nil {
		return m.slugExistsFn(ctx, slug)
	}
	return false, nil
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return p, nil
}

func (m *mockProductRepo) ListByMaker(ctx context.Context, makerID uuid.UUID) ([]domain.Product, error) {
	if m.listByMakerFn != nil {
		return m.listByMakerFn(ctx, makerID)
	}
	return nil, nil
}

// --- Mock PinRepository ---

type mockPinRepo struct {
	createFn        func(ctx context.Context, pin *domain.Pin) (*domain.Pin, error)
	listByProductFn func(ctx context.Context, productID uuid.UUID, limit int) ([]domain.Pin, error)
}

func (m *mockPinRepo) Create(ctx context.Context, pin *domain.Pin) (*domain.Pin, error) {
	if m.createFn != nil {
		return m.createFn(ctx, pin)
	}
	return pin, nil
}

func (m *mockPinRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]domain.Pin, error) {
	if m.listByProductFn != nil {
		return m.listByProductFn(ctx, productID, limit)
	}
	return nil, nil
}

// --- Mock LaunchRepository ---

type mockLaunchRepo struct {
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Launch, error)
	maxCaseIDFn    func(ctx context.Context) (string, error)
	createFn       func(ctx context.Context, l *domain.Launch) (*domain.Launch, error)
	listByPeriodFn func(ctx context.Context, periodKey string) ([]domain.LaunchEntry, error)
}

func (m *mockLaunchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Launch, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrLaunchNotFound
}

func (m *mockLaunchRepo) MaxCaseID(ctx context.Context) (string, error) {
	if m.maxCaseIDFn != nil {
		return m.maxCaseIDFn(ctx)
	}
	return "", nil
}

func (m *mockLaunchRepo) Create(ctx context.Context, l *domain.Launch) (*domain.Launch, error) {
	if m.createFn != nil {
		return m.createFn(ctx, l)
	}
	return l, nil
}

func (m *mockLaunchRepo) ListByPeriod(ctx context.Context, periodKey string) ([]domain.LaunchEntry, error) {
	if m.listByPeriodFn != nil {
		return m.listByPeriodFn(ctx, periodKey)
	}
	return nil, nil
}

// --- Mock StoryRepository ---

type mockStoryRepo struct {
	getBySlugFn  func(ctx context.Context, slug string) (*domain.Story, error)
	slugExistsFn func(ctx context.Context, slug string) (bool, error)
	createFn     func(ctx context.Context, s *domain.Story) (*domain.Story, error)
}

func (m *mockStoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Story, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, domain.ErrStoryNotFound
}

func (m *mockStoryRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	if m.slugExistsFn != nil {
		return m.slugExistsFn(ctx, slug)
	}
	return false, nil
}

func (m *mockStoryRepo) Create(ctx context.Context, s *domain.Story) (*domain.Story, error) {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return s, nil
}

// --- Mock StatsRepository ---

type mockStatsRepo struct {
	wallStatsFn func(ctx context.Context, periodKey string) (domain.WallStats, error)
}

func (m *mockStatsRepo) WallStats(ctx context.Context, periodKey string) (domain.WallStats, error) {
	if m.wallStatsFn != nil {
		return m.wallStatsFn(ctx, periodKey)
	}
	return domain.WallStats{}, nil
}

// --- Mock PaymentRepository ---

type mockPaymentRepo struct {
	recordAndGrantFn func(ctx context.Context, p domain.Payment) (bool, error)
}

func (m *mockPaymentRepo) RecordAndGrant(ctx context.Context, p domain.Payment) (bool, error) {
	if m.recordAndGrantFn != nil {
		return m.recordAndGrantFn(ctx, p)
	}
	return true, nil
}

// --- Mock CacheInvalidator ---

type mockInvalidator struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (m *mockInvalidator) Publish(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, keys...)
	return m.err
}

// --- In-memory ChoiceStore ---

type choiceKey struct {
	actor, target uuid.UUID
}

// memChoiceStore serialises transactions with one mutex, the way the target row lock
// serialises toggles on the same target in postgres. Mutations are staged and only
// applied when fn succeeds.
type memChoiceStore struct {
	mu         sync.Mutex
	records    map[domain.ChoiceKind]map[choiceKey][]string
	aggregates map[domain.ChoiceKind]map[uuid.UUID]map[string]int
	targets    map[uuid.UUID]bool

	// skewRecount makes the next n recounts report one extra vote.
	skewRecount int
}

func newMemChoiceStore(targets ...uuid.UUID) *memChoiceStore {
	s := &memChoiceStore{
		records:    make(map[domain.ChoiceKind]map[choiceKey][]string),
		aggregates: make(map[domain.ChoiceKind]map[uuid.UUID]map[string]int),
		targets:    make(map[uuid.UUID]bool),
	}
	for _, t := range targets {
		s.targets[t] = true
	}
	return s
}

func (s *memChoiceStore) WithChoiceTx(_ context.Context, kind domain.ChoiceKind, fn func(tx domain.ChoiceTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memChoiceTx{store: s, kind: kind, records: make(map[choiceKey][]string), aggregates: make(map[uuid.UUID]map[string]int)}
	for k, v := range s.records[kind] {
		tx.records[k] = slices.Clone(v)
	}
	if err := fn(tx); err != nil {
		return err
	}

	s.records[kind] = tx.records
	if s.aggregates[kind] == nil {
		s.aggregates[kind] = make(map[uuid.UUID]map[string]int)
	}
	for target, agg := range tx.aggregates {
		s.aggregates[kind][target] = agg
	}
	return nil
}

func (s *memChoiceStore) aggregate(kind domain.ChoiceKind, target uuid.UUID) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregates[kind][target]
}

func (s *memChoiceStore) held(kind domain.ChoiceKind, actor, target uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[kind][choiceKey{actor, target}]
}

type memChoiceTx struct {
	store      *memChoiceStore
	kind       domain.ChoiceKind
	records    map[choiceKey][]string
	aggregates map[uuid.UUID]map[string]int
}

func (tx *memChoiceTx) LockTarget(_ context.Context, target uuid.UUID) error {
	if !tx.store.targets[target] {
		return domain.ErrNotFound
	}
	return nil
}

func (tx *memChoiceTx) Current(_ context.Context, actor, target uuid.UUID) ([]string, error) {
	return slices.Clone(tx.records[choiceKey{actor, target}]), nil
}

func (tx *memChoiceTx) Insert(_ context.Context, actor, target uuid.UUID, choice string) error {
	k := choiceKey{actor, target}
	if slices.Contains(tx.records[k], choice) {
		return domain.ErrConflict
	}
	tx.records[k] = append(tx.records[k], choice)
	return nil
}

func (tx *memChoiceTx) Update(_ context.Context, actor, target uuid.UUID, choice string) error {
	tx.records[choiceKey{actor, target}] = []string{choice}
	return nil
}

func (tx *memChoiceTx) DeleteAll(_ context.Context, actor, target uuid.UUID) error {
	delete(tx.records, choiceKey{actor, target})
	return nil
}

func (tx *memChoiceTx) all(target uuid.UUID) []string {
	var choices []string
	for k, v := range tx.records {
		if k.target == target {
			choices = append(choices, v...)
		}
	}
	return choices
}

func (tx *memChoiceTx) Recount(_ context.Context, target uuid.UUID) (map[string]int, error) {
	agg := toggle.Tally(tx.all(target))
	if tx.store.skewRecount > 0 {
		tx.store.skewRecount--
		agg["phantom"]++
	}
	tx.aggregates[target] = agg
	return agg, nil
}

func (tx *memChoiceTx) CountRecords(_ context.Context, target uuid.UUID) (int, error) {
	return len(tx.all(target)), nil
}
