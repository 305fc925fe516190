package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pscheid92/founderswall/internal/domain"
)

const (
	githubAuthorizeURL = "https://github.com/login/oauth/authorize"
	githubTokenURL     = "https://github.com/login/oauth/access_token"
	githubUserURL      = "https://api.github.com/user"
	githubScope        = "read:user"
	httpCallTimeout    = 10 * time.Second
)

// identityProvider runs the OAuth authorization-code flow against the login provider.
type identityProvider interface {
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.Identity, error)
}

// githubOAuthClient is the production implementation using GitHub's OAuth app endpoints.
type githubOAuthClient struct {
	clientID     string
	clientSecret string
	redirectURI  string

	authorizeURL string
	tokenURL     string
	userURL      string
	httpClient   *http.Client
}

func newGitHubOAuthClient(clientID, clientSecret, redirectURI string) *githubOAuthClient {
	return &githubOAuthClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authorizeURL: githubAuthorizeURL,
		tokenURL:     githubTokenURL,
		userURL:      githubUserURL,
		httpClient:   &http.Client{Timeout: httpCallTimeout},
	}
}

func (c *githubOAuthClient) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("scope", githubScope)
	q.Set("state", state)
	return c.authorizeURL + "?" + q.Encode()
}

func (c *githubOAuthClient) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	accessToken, err := c.exchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	identity, err := c.fetchUser(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("user info fetch failed: %w", err)
	}
	return identity, nil
}

func (c *githubOAuthClient) exchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	// The token endpoint reports a bad code with 200 and an error field.
	if tokenResp.Error != "" {
		return "", fmt.Errorf("token endpoint rejected code: %s: %s", tokenResp.Error, tokenResp.Description)
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("token endpoint returned no access token")
	}
	return tokenResp.AccessToken, nil
}

func (c *githubOAuthClient) fetchUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute user request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user API returned status %d", resp.StatusCode)
	}

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	if user.ID == 0 || user.Login == "" {
		return nil, errors.New("no user data returned")
	}

	return &domain.Identity{
		ProviderID:  "github:" + strconv.FormatInt(user.ID, 10),
		Login:       user.Login,
		DisplayName: user.Name,
		AvatarURL:   user.AvatarURL,
	}, nil
}
