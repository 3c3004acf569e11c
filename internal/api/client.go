package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/agentcost/agentcost-tui/internal/events"
	"github.com/agentcost/agentcost-tui/internal/logger"
)

// AuthType selects which credential a request carries.
type AuthType int

const (
	// AuthAPIKey uses the project-scoped API key (analytics, events,
	// optimizations).
	AuthAPIKey AuthType = iota
	// AuthJWT uses the user-scoped access token (account, projects, team).
	AuthJWT
	// AuthNone sends no Authorization header.
	AuthNone
)

// String returns the string representation of an AuthType.
func (a AuthType) String() string {
	switch a {
	case AuthAPIKey:
		return "api-key"
	case AuthJWT:
		return "jwt"
	case AuthNone:
		return "none"
	default:
		return "unknown"
	}
}

// CredentialSource supplies the project API key.
type CredentialSource interface {
	APIKey() string
}

// TokenStore supplies and persists the JWT credential pair.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(accessToken, refreshToken string) error
}

// Publisher broadcasts token lifecycle events. The client never talks to the
// session service directly; it only publishes here.
type Publisher interface {
	Publish(events.Event)
}

const defaultTimeout = 30 * time.Second

// bareProjectRe matches /v1/projects/{id} with no further path segments.
var bareProjectRe = regexp.MustCompile(`^/v1/projects/[^/]+$`)

// ResolveAuth decides which credential an endpoint requires.
func ResolveAuth(endpoint string) AuthType {
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	switch {
	case strings.Contains(path, "/health"):
		return AuthNone
	case strings.Contains(path, "/auth/"):
		return AuthJWT
	case path == "/v1/projects":
		return AuthJWT
	case strings.Contains(path, "/members"),
		strings.Contains(path, "/invitations"),
		strings.Contains(path, "/leave"):
		return AuthJWT
	case bareProjectRe.MatchString(path) && !strings.HasSuffix(path, "/me"):
		return AuthJWT
	default:
		return AuthAPIKey
	}
}

// Client is the single point of outbound HTTP calls to the backend. It
// resolves credentials per request and transparently retries once after a
// JWT refresh on 401.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
	tokens     TokenStore
	bus        Publisher
}

// New creates a new API client. httpClient may be nil, in which case a
// default client with a 30 second timeout is used.
func New(baseURL string, creds CredentialSource, tokens TokenStore, bus Publisher, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		creds:      creds,
		tokens:     tokens,
		bus:        bus,
	}
}

// IsConfigured reports whether an API key is currently present. Pages use
// this to decide between fetching and showing the onboarding screen.
func (c *Client) IsConfigured() bool {
	return c.creds != nil && c.creds.APIKey() != ""
}

// Request issues a request with auth resolved from the endpoint. A nil
// payload sends no body. The returned bytes are nil for 204 responses.
func (c *Client) Request(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	return c.do(ctx, method, endpoint, payload, ResolveAuth(endpoint), true)
}

// RequestWithAuth issues a request with an explicit auth override.
func (c *Client) RequestWithAuth(ctx context.Context, method, endpoint string, payload any, auth AuthType) ([]byte, error) {
	return c.do(ctx, method, endpoint, payload, auth, true)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any, auth AuthType, retryOnUnauthorized bool) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.attachAuth(req, auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && auth == AuthJWT && retryOnUnauthorized {
		if refreshErr := c.refreshTokens(ctx); refreshErr == nil {
			// Exactly one replay; a second 401 propagates as an error.
			return c.do(ctx, method, endpoint, payload, auth, false)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	return body, nil
}

// attachAuth sets the Authorization header for the resolved auth type. The
// header is omitted when the relevant credential is absent.
func (c *Client) attachAuth(req *http.Request, auth AuthType) {
	switch auth {
	case AuthAPIKey:
		if c.creds != nil {
			if key := c.creds.APIKey(); key != "" {
				req.Header.Set("Authorization", "Bearer "+key)
			}
		}
	case AuthJWT:
		if c.tokens != nil {
			if tok := c.tokens.AccessToken(); tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
		}
	case AuthNone:
	}
}

// refreshTokens exchanges the stored refresh token for a new pair, persists
// it, and broadcasts the outcome.
func (c *Client) refreshTokens(ctx context.Context) error {
	if c.tokens == nil {
		return fmt.Errorf("no token store")
	}
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		err := fmt.Errorf("refresh token is empty")
		c.publish(events.RefreshFailed{Err: err})
		return err
	}

	payload := map[string]string{"refresh_token": refreshToken}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/auth/refresh", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.publish(events.RefreshFailed{Err: err})
		return fmt.Errorf("token refresh failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.publish(events.RefreshFailed{Err: err})
		return fmt.Errorf("failed to read refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("token refresh failed (status %d): %s", resp.StatusCode, string(body))
		c.publish(events.RefreshFailed{Err: err})
		return err
	}

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &pair); err != nil {
		c.publish(events.RefreshFailed{Err: err})
		return fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if pair.AccessToken == "" {
		err := fmt.Errorf("refresh response missing access token")
		c.publish(events.RefreshFailed{Err: err})
		return err
	}

	// The backend may rotate the refresh token; keep the old one otherwise.
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	if err := c.tokens.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	c.publish(events.TokensRefreshed{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	return nil
}

// RefreshTokens proactively rotates the JWT pair so the access token never
// expires mid-session. The outcome is broadcast on the bus either way.
func (c *Client) RefreshTokens(ctx context.Context) error {
	return c.refreshTokens(ctx)
}

func (c *Client) publish(event events.Event) {
	if c.bus != nil {
		c.bus.Publish(event)
	}
}

// get issues a GET and decodes the JSON response into out.
func get[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var out T
	body, err := c.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to parse response from %s: %w", endpoint, err)
	}
	return out, nil
}

// post issues a POST and decodes the JSON response into out. A 204 leaves
// out as its zero value.
func post[T any](ctx context.Context, c *Client, endpoint string, payload any) (T, error) {
	var out T
	body, err := c.Request(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return out, err
	}
	if body == nil {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to parse response from %s: %w", endpoint, err)
	}
	return out, nil
}
