package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/founderswall/internal/app"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/period"
	"github.com/pscheid92/founderswall/internal/platform/config"
	"github.com/pscheid92/founderswall/web"
)

type appService interface {
	LoginMaker(ctx context.Context, id domain.Identity) (*domain.Maker, error)
	GetMaker(ctx context.Context, id uuid.UUID) (*domain.Maker, error)
	GetMugshot(ctx context.Context, handle string) (*app.Mugshot, error)
	UpdateProfile(ctx context.Context, makerID uuid.UUID, update domain.ProfileUpdate) (*domain.Maker, error)
	ToggleConnection(ctx context.Context, follower uuid.UUID, handle string) (domain.ToggleResult, error)

	CreateProduct(ctx context.Context, makerID uuid.UUID, in app.NewProduct) (*domain.Product, error)
	GetProduct(ctx context.Context, productSlug string) (*domain.Product, error)
	AddPin(ctx context.Context, makerID uuid.UUID, productSlug, body string) (*domain.Pin, error)
	ListPins(ctx context.Context, productSlug string, limit int) ([]domain.Pin, error)

	SubmitLaunch(ctx context.Context, makerID uuid.UUID, productSlug string) (*domain.Launch, error)
	LaunchBoard(ctx context.Context) (app.Board, error)
	ToggleUpvote(ctx context.Context, voter, launchID uuid.UUID) (domain.ToggleResult, error)
	SetPledges(ctx context.Context, supporter, launchID uuid.UUID, supportTypes []string) (domain.ToggleResult, error)

	CreateStory(ctx context.Context, makerID uuid.UUID, in app.NewStory) (*domain.Story, error)
	GetStory(ctx context.Context, storySlug string) (*app.StoryPage, error)
	ReactToStory(ctx context.Context, reader uuid.UUID, storySlug, emoji string) (domain.ToggleResult, error)

	WallStats(ctx context.Context) (domain.WallStats, error)
	RecordPayment(ctx context.Context, p domain.Payment) (bool, error)

	CurrentPeriod() period.Window
	Now() time.Time
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app   appService
	guard domain.IdempotencyGuard

	httpMetrics    echo.MiddlewareFunc
	metricsHandler http.Handler

	templates *template.Template
	validate  *validator.Validate

	oauthClient  identityProvider
	sessionStore *sessions.CookieStore
	healthChecks []HealthCheck
	startTime    time.Time
}

// Observability bundles the optional metrics plumbing. Zero values disable it.
type Observability struct {
	HTTPMetrics    echo.MiddlewareFunc
	MetricsHandler http.Handler
}

func NewServer(cfg *config.Config, app appService, guard domain.IdempotencyGuard, obs Observability, healthChecks []HealthCheck) (*Server, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         cfg,
		app:            app,
		guard:          guard,
		httpMetrics:    obs.HTTPMetrics,
		metricsHandler: obs.MetricsHandler,
		templates:      templates,
		validate:       newValidator(),
		oauthClient:    newGitHubOAuthClient(cfg.OAuthClientID, cfg.OAuthSecret, cfg.OAuthRedirectURI),
		sessionStore:   setupSessionStore(cfg),
		healthChecks:   healthChecks,
		startTime:      time.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session keys
const (
	sessionName          = "founderswall-session"
	sessionKeyMakerID    = "maker_id"
	sessionKeyOAuthState = "oauth_state"
)

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
