package worldcat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTokenURL = "https://oauth.oclc.org/token"

// tokenSafetyMargin is how much remaining validity a cached token must have
// before it is reused instead of refreshed.
const tokenSafetyMargin = 10 * time.Second

// defaultTokenLifetime applies when the exchange response omits expires_in.
const defaultTokenLifetime = 3600 * time.Second

// AuthError reports a failed token exchange. It is fatal for the current
// operation: no catalog call can succeed without a token, so callers must
// not retry silently.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token exchange returned status %d: %s", e.StatusCode, e.Body)
}

// Token is a bearer credential for the catalog API.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenCache holds a single live token for the WorldCat API, refreshing it
// through the OAuth client-credentials flow when it nears expiry. It is
// injected into every client needing auth rather than kept as package state.
type TokenCache struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu    sync.Mutex
	token Token

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewTokenCache creates a TokenCache for the given WSKey credential pair.
func NewTokenCache(clientID, clientSecret string) *TokenCache {
	return &TokenCache{
		tokenURL:     defaultTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		now: time.Now,
	}
}

// Get returns a valid token, reusing the cached one while it has more than
// the safety margin of validity left and exchanging credentials otherwise.
func (c *TokenCache) Get(ctx context.Context) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Value != "" && c.token.ExpiresAt.After(c.now().Add(tokenSafetyMargin)) {
		return c.token, nil
	}

	token, err := c.exchange(ctx)
	if err != nil {
		return Token{}, err
	}

	c.token = token
	return token, nil
}

// exchange performs the OAuth client-credentials call.
func (c *TokenCache) exchange(ctx context.Context) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "wcapi")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Token{}, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return Token{}, fmt.Errorf("failed to decode token response: %w", err)
	}

	lifetime := defaultTokenLifetime
	if tokenResp.ExpiresIn > 0 {
		lifetime = time.Duration(tokenResp.ExpiresIn) * time.Second
	}

	return Token{
		Value:     tokenResp.AccessToken,
		ExpiresAt: c.now().Add(lifetime),
	}, nil
}
