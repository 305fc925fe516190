package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/founderswall/internal/domain"
)

// stateCookie returns a session cookie holding a pending OAuth state.
func stateCookie(t *testing.T, srv *Server, state string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	session, err := srv.sessionStore.New(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyOAuthState] = state
	require.NoError(t, session.Save(req, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestRequireAPIAuth_NoSession(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "unauthorized", body["type"])
	assert.Equal(t, "login required", body["error"])
}

func TestRequireAPIAuth_StaleSession(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, authedRequest(t, srv, http.MethodGet, "/api/me", "", uuid.New()))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), sessionName+"=")
}

func TestRequireAPIAuth_StorageError(t *testing.T) {
	srv := newTestServer(t, &mockAppService{
		getMakerFn: func(context.Context, uuid.UUID) (*domain.Maker, error) {
			return nil, domain.ErrStorageUnavailable
		},
	})

	rec := serve(srv, authedRequest(t, srv, http.MethodGet, "/api/me", "", uuid.New()))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequirePageAuth_RedirectsToLogin(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/new", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestComposePage_LoggedIn(t *testing.T) {
	makerID := uuid.New()
	srv := newTestServer(t, &mockAppService{getMakerFn: knownMaker(makerID, "ada")})

	rec := serve(srv, authedRequest(t, srv, http.MethodGet, "/new", "", makerID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FIRST_TESTERS")
}

func TestLoginPage_RendersAuthorizeURL(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "login.example.test/authorize")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), sessionName+"=")
}

func TestLoginPage_AlreadyLoggedIn(t *testing.T) {
	makerID := uuid.New()
	srv := newTestServer(t, &mockAppService{getMakerFn: knownMaker(makerID, "ada")})

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req.AddCookie(sessionCookie(t, srv, makerID))
	rec := serve(srv, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestOAuthCallback_MissingCode(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/auth/callback?state=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing code parameter", decodeJSON(t, rec)["error"])
}

func TestOAuthCallback_StateMismatch(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c&state=forged", nil)
	req.AddCookie(stateCookie(t, srv, "expected"))
	rec := serve(srv, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid OAuth state", decodeJSON(t, rec)["error"])
}

func TestOAuthCallback_NoPendingState(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/auth/callback?code=c&state=s", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing OAuth state", decodeJSON(t, rec)["error"])
}

func TestOAuthCallback_ProviderFailure(t *testing.T) {
	srv := newTestServer(t, &mockAppService{},
		withOAuthClient(&mockOAuthClient{err: errors.New("bad code")}))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c&state=s", nil)
	req.AddCookie(stateCookie(t, srv, "s"))
	rec := serve(srv, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "external", decodeJSON(t, rec)["type"])
}

func TestOAuthCallback_Success(t *testing.T) {
	makerID := uuid.New()
	identity := &domain.Identity{ProviderID: "github:42", Login: "ada"}
	var loggedIn domain.Identity

	srv := newTestServer(t, &mockAppService{
		loginMakerFn: func(_ context.Context, id domain.Identity) (*domain.Maker, error) {
			loggedIn = id
			return &domain.Maker{ID: makerID, Handle: "ada"}, nil
		},
	}, withOAuthClient(&mockOAuthClient{identity: identity}))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c&state=s", nil)
	req.AddCookie(stateCookie(t, srv, "s"))
	rec := serve(srv, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/m/ada", rec.Header().Get("Location"))
	assert.Equal(t, "github:42", loggedIn.ProviderID)

	// The last cookie written carries the new maker session.
	var issued *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName && c.MaxAge >= 0 {
			issued = c
		}
	}
	require.NotNil(t, issued)

	follow := httptest.NewRequest(http.MethodGet, "/", nil)
	follow.AddCookie(issued)
	_, gotID, ok := srv.sessionMaker(srv.echo.NewContext(follow, httptest.NewRecorder()))
	require.True(t, ok)
	assert.Equal(t, makerID, gotID)
}

func TestLogout(t *testing.T) {
	makerID := uuid.New()
	srv := newTestServer(t, &mockAppService{getMakerFn: knownMaker(makerID, "ada")})

	rec := serve(srv, authedRequest(t, srv, http.MethodPost, "/auth/logout", "", makerID))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestLogout_RequiresCSRFToken(t *testing.T) {
	makerID := uuid.New()
	srv := newTestServer(t, &mockAppService{getMakerFn: knownMaker(makerID, "ada")})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(sessionCookie(t, srv, makerID))
	rec := serve(srv, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decodeJSON(t, rec)["error"].(string), "missing csrf token"))
}
