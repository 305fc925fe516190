package httpserver

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/founderswall/internal/app"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/period"
	"github.com/pscheid92/founderswall/internal/platform/config"
	"github.com/pscheid92/founderswall/web"
)

var testNow = time.Date(2024, 6, 13, 10, 0, 0, 0, time.UTC)

const (
	testWebhookSecret = "test-webhook-secret-0123456789"
	testCSRFToken     = "test-csrf-token-value"
)

// --- Mock implementations ---

type mockAppService struct {
	loginMakerFn       func(ctx context.Context, id domain.Identity) (*domain.Maker, error)
	getMakerFn         func(ctx context.Context, id uuid.UUID) (*domain.Maker, error)
	getMugshotFn       func(ctx context.Context, handle string) (*app.Mugshot, error)
	updateProfileFn    func(ctx context.Context, makerID uuid.UUID, update domain.ProfileUpdate) (*domain.Maker, error)
	toggleConnectionFn func(ctx context.Context, follower uuid.UUID, handle string) (domain.ToggleResult, error)
	createProductFn    func(ctx context.Context, makerID uuid.UUID, in app.NewProduct) (*domain.Product, error)
	getProductFn       func(ctx context.Context, productSlug string) (*domain.Product, error)
	addPinFn           func(ctx context.Context, makerID uuid.UUID, productSlug, body string) (*domain.Pin, error)
	listPinsFn         func(ctx context.Context, productSlug string, limit int) ([]domain.Pin, error)
	submitLaunchFn     func(ctx context.Context, makerID uuid.UUID, productSlug string) (*domain.Launch, error)
	launchBoardFn      func(ctx context.Context) (app.Board, error)
	toggleUpvoteFn     func(ctx context.Context, voter, launchID uuid.UUID) (domain.ToggleResult, error)
	setPledgesFn       func(ctx context.Context, supporter, launchID uuid.UUID, supportTypes []string) (domain.ToggleResult, error)
	createStoryFn      func(ctx context.Context, makerID uuid.UUID, in app.NewStory) (*domain.Story, error)
	getStoryFn         func(ctx context.Context, storySlug string) (*app.StoryPage, error)
	reactToStoryFn     func(ctx context.Context, reader uuid.UUID, storySlug, emoji string) (domain.ToggleResult, error)
	wallStatsFn        func(ctx context.Context) (domain.WallStats, error)
	recordPaymentFn    func(ctx context.Context, p domain.Payment) (bool, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockAppService) LoginMaker(ctx context.Context, id domain.Identity) (*domain.Maker, error) {
	if m.loginMakerFn != nil {
		return m.loginMakerFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) GetMaker(ctx context.Context, id uuid.UUID) (*domain.Maker, error) {
	if m.getMakerFn != nil {
		return m.getMakerFn(ctx, id)
	}
	return nil, domain.ErrMakerNotFound
}

func (m *mockAppService) GetMugshot(ctx context.Context, handle string) (*app.Mugshot, error) {
	if m.getMugshotFn != nil {
		return m.getMugshotFn(ctx, handle)
	}
	return nil, domain.ErrMakerNotFound
}

func (m *mockAppService) UpdateProfile(ctx context.Context, makerID uuid.UUID, update domain.ProfileUpdate) (*domain.Maker, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, makerID, update)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ToggleConnection(ctx context.Context, follower uuid.UUID, handle string) (domain.ToggleResult, error) {
	if m.toggleConnectionFn != nil {
		return m.toggleConnectionFn(ctx, follower, handle)
	}
	return domain.ToggleResult{}, errNotImplemented
}

func (m *mockAppService) CreateProduct(ctx context.Context, makerID uuid.UUID, in app.NewProduct) (*domain.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(ctx, makerID, in)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) GetProduct(ctx context.Context, productSlug string) (*domain.Product, error) {
	if m.getProductFn != nil {
		return m.getProductFn(ctx, productSlug)
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockAppService) AddPin(ctx context.Context, makerID uuid.UUID, productSlug, body string) (*domain.Pin, error) {
	if m.addPinFn != nil {
		return m.addPinFn(ctx, makerID, productSlug, body)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListPins(ctx context.Context, productSlug string, limit int) ([]domain.Pin, error) {
	if m.listPinsFn != nil {
		return m.listPinsFn(ctx, productSlug, limit)
	}
	return nil, nil
}

func (m *mockAppService) SubmitLaunch(ctx context.Context, makerID uuid.UUID, productSlug string) (*domain.Launch, error) {
	if m.submitLaunchFn != nil {
		return m.submitLaunchFn(ctx, makerID, productSlug)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) LaunchBoard(ctx context.Context) (app.Board, error) {
	if m.launchBoardFn != nil {
		return m.launchBoardFn(ctx)
	}
	return app.Board{Window: period.Current(testNow)}, nil
}

func (m *mockAppService) ToggleUpvote(ctx context.Context, voter, launchID uuid.UUID) (domain.ToggleResult, error) {
	if m.toggleUpvoteFn != nil {
		return m.toggleUpvoteFn(ctx, voter, launchID)
	}
	return domain.ToggleResult{}, errNotImplemented
}

func (m *mockAppService) SetPledges(ctx context.Context, supporter, launchID uuid.UUID, supportTypes []string) (domain.ToggleResult, error) {
	if m.setPledgesFn != nil {
		return m.setPledgesFn(ctx, supporter, launchID, supportTypes)
	}
	return domain.ToggleResult{}, errNotImplemented
}

func (m *mockAppService) CreateStory(ctx context.Context, makerID uuid.UUID, in app.NewStory) (*domain.Story, error) {
	if m.createStoryFn != nil {
		return m.createStoryFn(ctx, makerID, in)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) GetStory(ctx context.Context, storySlug string) (*app.StoryPage, error) {
	if m.getStoryFn != nil {
		return m.getStoryFn(ctx, storySlug)
	}
	return nil, domain.ErrStoryNotFound
}

func (m *mockAppService) ReactToStory(ctx context.Context, reader uuid.UUID, storySlug, emoji string) (domain.ToggleResult, error) {
	if m.reactToStoryFn != nil {
		return m.reactToStoryFn(ctx, reader, storySlug, emoji)
	}
	return domain.ToggleResult{}, errNotImplemented
}

func (m *mockAppService) WallStats(ctx context.Context) (domain.WallStats, error) {
	if m.wallStatsFn != nil {
		return m.wallStatsFn(ctx)
	}
	return domain.WallStats{}, nil
}

func (m *mockAppService) RecordPayment(ctx context.Context, p domain.Payment) (bool, error) {
	if m.recordPaymentFn != nil {
		return m.recordPaymentFn(ctx, p)
	}
	return false, errNotImplemented
}

func (m *mockAppService) CurrentPeriod() period.Window { return period.Current(testNow) }

func (m *mockAppService) Now() time.Time { return testNow }

type mockOAuthClient struct {
	identity *domain.Identity
	err      error
}

func (m *mockOAuthClient) AuthorizeURL(state string) string {
	return "https://login.example.test/authorize?state=" + state
}

func (m *mockOAuthClient) Exchange(_ context.Context, _ string) (*domain.Identity, error) {
	return m.identity, m.err
}

type mockGuard struct {
	claimFn   func(ctx context.Context, key string) (bool, error)
	releaseFn func(ctx context.Context, key string) error
	keys      []string
	released  []string
}

func (m *mockGuard) Claim(ctx context.Context, key string) (bool, error) {
	m.keys = append(m.keys, key)
	if m.claimFn != nil {
		return m.claimFn(ctx, key)
	}
	return true, nil
}

func (m *mockGuard) Release(ctx context.Context, key string) error {
	m.released = append(m.released, key)
	if m.releaseFn != nil {
		return m.releaseFn(ctx, key)
	}
	return nil
}

// newMemoryGuard returns a guard that remembers claims until they are released.
func newMemoryGuard() *mockGuard {
	claimed := map[string]bool{}
	return &mockGuard{
		claimFn: func(_ context.Context, key string) (bool, error) {
			if claimed[key] {
				return false, nil
			}
			claimed[key] = true
			return true, nil
		},
		releaseFn: func(_ context.Context, key string) error {
			delete(claimed, key)
			return nil
		},
	}
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	tmpl, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	require.NoError(t, err)

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	srv := &Server{
		echo: echo.New(),
		config: &config.Config{
			SessionMaxAge:        time.Hour,
			PaymentWebhookSecret: testWebhookSecret,
			RateLimitRPS:         1000,
			RateLimitBurst:       1000,
		},
		app:          app,
		templates:    tmpl,
		validate:     newValidator(),
		oauthClient:  &mockOAuthClient{},
		sessionStore: store,
		startTime:    time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()
	return srv
}

func withOAuthClient(oauth identityProvider) func(*Server) {
	return func(s *Server) { s.oauthClient = oauth }
}

func withGuard(guard domain.IdempotencyGuard) func(*Server) {
	return func(s *Server) { s.guard = guard }
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) { s.healthChecks = checks }
}

func withRateLimit(rps float64, burst int) func(*Server) {
	return func(s *Server) {
		s.config.RateLimitRPS = rps
		s.config.RateLimitBurst = burst
	}
}

// callHandler wraps a handler with error middleware, matching production behavior.
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}

func sessionCookie(t *testing.T, srv *Server, makerID uuid.UUID) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	session, err := srv.sessionStore.New(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyMakerID] = makerID.String()
	require.NoError(t, session.Save(req, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

// authedRequest builds a request carrying a session for makerID and a valid CSRF pair.
func authedRequest(t *testing.T, srv *Server, method, path, body string, makerID uuid.UUID) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.AddCookie(sessionCookie(t, srv, makerID))
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
	req.Header.Set("X-CSRF-Token", testCSRFToken)
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func knownMaker(id uuid.UUID, handle string) func(context.Context, uuid.UUID) (*domain.Maker, error) {
	return func(_ context.Context, got uuid.UUID) (*domain.Maker, error) {
		if got != id {
			return nil, domain.ErrMakerNotFound
		}
		return &domain.Maker{ID: id, Handle: handle, DisplayName: handle, CreatedAt: testNow}, nil
	}
}
