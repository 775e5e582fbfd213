package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthContext is one issued authentication token and its validity window.
// It is immutable once created; Manager replaces the whole value on refresh.
type AuthContext struct {
	// ProjectKey is the project the token was issued for.
	ProjectKey string

	// Bearer is the token value sent on probe requests.
	Bearer string

	// IssuedAt is when the token was fetched.
	IssuedAt time.Time

	// ExpiresAt is when the token stops being valid.
	ExpiresAt time.Time
}

// Valid reports whether the context still has at least margin of validity
// left at time t.
func (c *AuthContext) Valid(t time.Time, margin time.Duration) bool {
	return c != nil && c.Bearer != "" && t.Before(c.ExpiresAt.Add(-margin))
}

// ClientConfig configures the auth service client.
type ClientConfig struct {
	// AuthURL is the auth endpoint. The {proj_key} segment is replaced
	// with the project key at fetch time.
	AuthURL string

	// APIKey is the project API key exchanged for tokens.
	APIKey string

	// Timeout is the HTTP request timeout for auth calls.
	// Default: 10 seconds
	Timeout time.Duration

	// HTTPClient is the HTTP client to use. If nil, a default client with
	// the configured timeout is used.
	HTTPClient *http.Client
}

// Client fetches bearer tokens from the external auth service.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
}

// NewClient creates a new auth service client.
func NewClient(config ClientConfig) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{config: config, httpClient: httpClient}
}

// authResponse is the auth service response envelope.
type authResponse struct {
	Data struct {
		Token   string  `json:"token"`
		Expires float64 `json:"expires"` // unix seconds
	} `json:"data"`
}

// Fetch exchanges the API key for a fresh token.
//
// A non-200 response or a body missing the token returns an error without
// producing a context. When the response omits the expiry but the token is
// a JWT, the expiry is recovered from the unverified exp claim.
func (c *Client) Fetch(ctx context.Context, projectKey string) (*AuthContext, error) {
	url := strings.ReplaceAll(c.config.AuthURL, "{proj_key}", projectKey)

	payload, err := json.Marshal(map[string]string{"api_key": c.config.APIKey})
	if err != nil {
		return nil, fmt.Errorf("token: encode auth payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("token: build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.Data.Token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrMalformedResponse)
	}

	now := time.Now()
	expiresAt := time.Unix(int64(body.Data.Expires), 0)
	if body.Data.Expires == 0 {
		expiresAt = jwtExpiry(body.Data.Token)
	}
	if expiresAt.IsZero() || expiresAt.Unix() == 0 {
		return nil, fmt.Errorf("%w: missing expiry", ErrMalformedResponse)
	}

	return &AuthContext{
		ProjectKey: projectKey,
		Bearer:     body.Data.Token,
		IssuedAt:   now,
		ExpiresAt:  expiresAt,
	}, nil
}

// jwtExpiry extracts the exp claim from a JWT without verifying the
// signature. Expiry bounds the cache lifetime only; the auth service is the
// trust boundary. Returns the zero time if the token is not a JWT or has no
// exp claim.
func jwtExpiry(tokenString string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
