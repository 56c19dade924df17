package worldcat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestCache(serverURL string) *TokenCache {
	c := NewTokenCache("key", "secret")
	c.tokenURL = serverURL
	return c
}

func TestTokenCacheReusesValidToken(t *testing.T) {
	exchanges := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		if user, pass, ok := r.BasicAuth(); !ok || user != "key" || pass != "secret" {
			t.Errorf("Expected basic auth key/secret, got %s/%s", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
		if grant := r.PostForm.Get("grant_type"); grant != "client_credentials" {
			t.Errorf("Expected grant_type client_credentials, got %s", grant)
		}
		if scope := r.PostForm.Get("scope"); scope != "wcapi" {
			t.Errorf("Expected scope wcapi, got %s", scope)
		}
		fmt.Fprintf(w, `{"access_token": "tok-%d", "expires_in": 3600}`, exchanges)
	}))
	defer server.Close()

	c := newTestCache(server.URL)

	first, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	second, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if first.Value != "tok-1" || second.Value != "tok-1" {
		t.Errorf("Expected both calls to return tok-1, got %s and %s", first.Value, second.Value)
	}
	if exchanges != 1 {
		t.Errorf("Expected 1 exchange, got %d", exchanges)
	}
}

func TestTokenCacheRefreshesNearExpiry(t *testing.T) {
	exchanges := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		// 5 second lifetime is inside the 10 second safety margin, so the
		// next Get must refresh rather than reuse.
		fmt.Fprintf(w, `{"access_token": "tok-%d", "expires_in": 5}`, exchanges)
	}))
	defer server.Close()

	c := newTestCache(server.URL)

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	token, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if exchanges != 2 {
		t.Errorf("Expected 2 exchanges, got %d", exchanges)
	}
	if token.Value != "tok-2" {
		t.Errorf("Expected tok-2, got %s", token.Value)
	}
}

func TestTokenCacheDefaultLifetime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token": "tok"}`)
	}))
	defer server.Close()

	c := newTestCache(server.URL)
	start := time.Now()

	token, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	remaining := token.ExpiresAt.Sub(start)
	if remaining < 59*time.Minute || remaining > 61*time.Minute {
		t.Errorf("Expected roughly 1h default lifetime, got %v", remaining)
	}
}

func TestTokenCacheAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "bad wskey"}`)
	}))
	defer server.Close()

	c := newTestCache(server.URL)

	_, err := c.Get(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected *AuthError, got %v", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", authErr.StatusCode)
	}
}
