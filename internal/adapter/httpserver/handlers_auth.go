package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/founderswall/internal/domain"
	apperrors "github.com/pscheid92/founderswall/internal/platform/errors"
)

const (
	oauthTimeout = 10 * time.Second

	contextKeyMakerID = "makerID"
	contextKeyMaker   = "maker"
)

func (s *Server) registerAuthRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	s.echo.GET("/auth/login", s.handleLoginPage, rateLimiter)
	s.echo.GET("/auth/callback", s.handleOAuthCallback, rateLimiter)
	s.echo.POST("/auth/logout", s.handleLogout, rateLimiter, s.requireAPIAuth, csrfMiddleware)
}

// requireAPIAuth answers unauthenticated API calls with 401 JSON.
func (s *Server) requireAPIAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return s.authenticate(next, func(echo.Context) error {
		return apperrors.UnauthorizedError("login required")
	})
}

// requirePageAuth sends unauthenticated browsers to the login page.
func (s *Server) requirePageAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return s.authenticate(next, func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/auth/login")
	})
}

func (s *Server) authenticate(next echo.HandlerFunc, deny func(echo.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, makerID, ok := s.sessionMaker(c)
		if !ok {
			return deny(c)
		}

		// The maker may be gone after a database reset; drop the stale session.
		maker, err := s.app.GetMaker(c.Request().Context(), makerID)
		if errors.Is(err, domain.ErrMakerNotFound) {
			slog.WarnContext(c.Request().Context(), "Session references unknown maker, invalidating", "maker_id", makerID.String())
			session.Options.MaxAge = -1
			_ = session.Save(c.Request(), c.Response().Writer)
			return deny(c)
		}
		if err != nil {
			return err
		}

		c.Set(contextKeyMakerID, maker.ID)
		c.Set(contextKeyMaker, maker)
		return next(c)
	}
}

// sessionMaker reads the maker ID from the session cookie without touching storage.
func (s *Server) sessionMaker(c echo.Context) (*sessions.Session, uuid.UUID, bool) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return nil, uuid.Nil, false
	}
	raw, ok := session.Values[sessionKeyMakerID].(string)
	if !ok {
		return nil, uuid.Nil, false
	}
	makerID, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, false
	}
	return session, makerID, true
}

// viewer returns the logged-in maker for public pages, or nil for anonymous visitors.
func (s *Server) viewer(c echo.Context) *domain.Maker {
	if maker, ok := c.Get(contextKeyMaker).(*domain.Maker); ok {
		return maker
	}
	_, makerID, ok := s.sessionMaker(c)
	if !ok {
		return nil
	}
	maker, err := s.app.GetMaker(c.Request().Context(), makerID)
	if err != nil {
		return nil
	}
	return maker
}

// currentMakerID is only valid behind requireAPIAuth or requirePageAuth.
func currentMakerID(c echo.Context) (uuid.UUID, error) {
	makerID, ok := c.Get(contextKeyMakerID).(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.InternalError("invalid maker ID in context", nil)
	}
	return makerID, nil
}

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *Server) handleLoginPage(c echo.Context) error {
	if s.viewer(c) != nil {
		if err := c.Redirect(http.StatusFound, "/"); err != nil {
			return fmt.Errorf("failed to redirect: %w", err)
		}
		return nil
	}

	state, err := generateOAuthState()
	if err != nil {
		return apperrors.InternalError("failed to generate OAuth state", err)
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.WarnContext(c.Request().Context(), "Discarding unreadable session", "error", err)
	}

	session.Values[sessionKeyOAuthState] = state
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save OAuth state session", err)
	}

	data := map[string]any{"AuthURL": s.oauthClient.AuthorizeURL(state)}
	return s.renderTemplate(c, "login.html", data)
}

func (s *Server) handleOAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return apperrors.ValidationError("missing code parameter")
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return apperrors.ValidationError("invalid session")
	}

	expectedState, ok := session.Values[sessionKeyOAuthState].(string)
	if !ok || expectedState == "" {
		return apperrors.ValidationError("missing OAuth state")
	}
	if c.QueryParam("state") != expectedState {
		return apperrors.ValidationError("invalid OAuth state")
	}
	delete(session.Values, sessionKeyOAuthState)

	ctx, cancel := context.WithTimeout(c.Request().Context(), oauthTimeout)
	defer cancel()

	identity, err := s.oauthClient.Exchange(ctx, code)
	if err != nil {
		return apperrors.ExternalError("failed to authenticate with login provider", err)
	}

	maker, err := s.app.LoginMaker(ctx, *identity)
	if err != nil {
		return err
	}

	// Issue a fresh session so an ID fixed before login is useless afterwards.
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to invalidate old session", err)
	}

	session, err = s.sessionStore.New(c.Request(), sessionName)
	if err != nil {
		return apperrors.InternalError("failed to create new session", err)
	}
	session.Values[sessionKeyMakerID] = maker.ID.String()
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	slog.InfoContext(ctx, "Maker logged in", "maker_id", maker.ID.String(), "handle", maker.Handle)

	if err := c.Redirect(http.StatusFound, "/m/"+maker.Handle); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx := c.Request().Context()
	makerID, _ := c.Get(contextKeyMakerID).(uuid.UUID)

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		session, err = s.sessionStore.New(c.Request(), sessionName)
		if err != nil {
			return apperrors.InternalError("failed to create new session during logout", err)
		}
	}
	session.Options.MaxAge = -1

	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save logout session", err)
	}

	slog.InfoContext(ctx, "Maker logged out", "maker_id", makerID.String())

	if err := c.Redirect(http.StatusFound, "/"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}
