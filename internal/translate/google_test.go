package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *Google {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	g := NewGoogle()
	g.baseURL = server.URL
	return g
}

func TestGoogleTranslate(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "auto" || q.Get("dt") != "t" {
			t.Errorf("Unexpected query params %v", q)
		}
		if q.Get("tl") != "es" {
			t.Errorf("Expected tl es, got %s", q.Get("tl"))
		}
		if q.Get("q") != "Hello world. Goodbye." {
			t.Errorf("Expected text passthrough, got %s", q.Get("q"))
		}
		fmt.Fprint(w, `[[["Hola mundo. ","Hello world. ",null,null,10],["Adiós.","Goodbye.",null,null,10]],null,"en"]`)
	})

	got, err := g.Translate(context.Background(), "Hello world. Goodbye.", "es")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "Hola mundo. Adiós." {
		t.Errorf("Expected concatenated segments, got %q", got)
	}
}

func TestGoogleTranslateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"server error", "quota exceeded", http.StatusTooManyRequests},
		{"empty array", "[]", http.StatusOK},
		{"no segments", `[[],null,"en"]`, http.StatusOK},
		{"not json", "<html>", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				fmt.Fprint(w, tt.body)
			})

			if _, err := g.Translate(context.Background(), "Hello", "es"); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
