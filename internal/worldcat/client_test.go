package worldcat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleBib = `{
  "title": {"mainTitles": [{"text": "Mi Casa"}]},
  "contributor": {"creators": [{"name": "Juana Pérez"}]},
  "subjects": [{"subjectName": {"text": "Migración"}}],
  "date": {"publicationDate": "1998"},
  "description": {"physicalDescription": "1 photograph"},
  "format": {"generalFormat": "Image"},
  "language": {"itemLanguage": "spa"},
  "publishers": [{"publisherName": {"text": "Editorial Sur"}}]
}`

func TestParseBib(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(sampleBib), &doc); err != nil {
		t.Fatalf("Failed to unmarshal sample: %v", err)
	}

	bib := ParseBib(doc)

	if bib.Title != "Mi Casa" {
		t.Errorf("Expected Mi Casa, got %s", bib.Title)
	}
	if bib.Creator != "Juana Pérez" {
		t.Errorf("Expected Juana Pérez, got %s", bib.Creator)
	}
	if !reflect.DeepEqual(bib.Subjects, []string{"Migración"}) {
		t.Errorf("Expected [Migración], got %v", bib.Subjects)
	}
	if bib.Date != "1998" {
		t.Errorf("Expected 1998, got %s", bib.Date)
	}
	if bib.Publisher != "Editorial Sur" {
		t.Errorf("Expected Editorial Sur, got %s", bib.Publisher)
	}
	if bib.Format != "Image" {
		t.Errorf("Expected Image, got %s", bib.Format)
	}
}

func TestParseBibFallbacks(t *testing.T) {
	var doc map[string]any
	payload := `{
	  "contributor": {"creators": [{"firstName": {"text": "Ana"}}]},
	  "description": {"abstract": "An oral history."},
	  "subjects": [{"label": "Exile"}, {"other": true}]
	}`
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}

	bib := ParseBib(doc)

	if bib.Creator != "Ana" {
		t.Errorf("Expected firstName fallback Ana, got %s", bib.Creator)
	}
	if bib.Description != "An oral history." {
		t.Errorf("Expected abstract fallback, got %s", bib.Description)
	}
	if !reflect.DeepEqual(bib.Subjects, []string{"Exile"}) {
		t.Errorf("Expected label fallback [Exile], got %v", bib.Subjects)
	}
}

func TestParseBibEmptyDocument(t *testing.T) {
	bib := ParseBib(map[string]any{})
	if bib.Title != "" || bib.Creator != "" || len(bib.Subjects) != 0 {
		t.Errorf("Expected empty bib, got %+v", bib)
	}
}

func TestNormalize(t *testing.T) {
	bib := Bib{
		Title:       "Mi Casa",
		Creator:     "Juana Pérez",
		Subjects:    []string{"Migración"},
		Date:        "1998",
		Description: "1 photograph",
	}

	rec := Normalize(bib, "44048183")

	if rec.Source != "worldcat" {
		t.Errorf("Expected source worldcat, got %s", rec.Source)
	}
	if rec.ID != "44048183" {
		t.Errorf("Expected id 44048183, got %s", rec.ID)
	}
	if rec.Title != "Mi Casa" {
		t.Errorf("Expected Mi Casa, got %s", rec.Title)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"Migración"}) {
		t.Errorf("Expected [Migración], got %v", rec.Tags)
	}
	if rec.MediaURLs == nil {
		t.Error("Expected media_urls initialized, got nil")
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := NewTokenCache("key", "secret")
	tokens.tokenURL = server.URL + "/token"

	client := NewClient(tokens)
	client.BaseURL = server.URL
	return client, server
}

func TestLookup(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			fmt.Fprint(w, `{"access_token": "tok", "expires_in": 3600}`)
		case "/bibs/44048183":
			if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
				t.Errorf("Expected Bearer tok, got %s", auth)
			}
			fmt.Fprint(w, sampleBib)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	bib, err := client.Lookup(context.Background(), "44048183")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if bib.Title != "Mi Casa" {
		t.Errorf("Expected Mi Casa, got %s", bib.Title)
	}

	_, err = client.Lookup(context.Background(), "0")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFetchBatchAbortsOnAuthError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, _, err := client.FetchBatch(context.Background(), []string{"1", "2"})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected *AuthError, got %v", err)
	}
}

func TestFetchBatchAccumulatesFailures(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			fmt.Fprint(w, `{"access_token": "tok", "expires_in": 3600}`)
		case "/bibs/1":
			fmt.Fprint(w, sampleBib)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	records, failed, err := client.FetchBatch(context.Background(), []string{"1", "", "999"})
	if err != nil {
		t.Fatalf("FetchBatch returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].ID != "1" {
		t.Errorf("Expected id 1, got %s", records[0].ID)
	}
	if !reflect.DeepEqual(failed, []string{"999"}) {
		t.Errorf("Expected failed [999], got %v", failed)
	}
}

func TestReadNumbersCSV(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
		wantErr  bool
	}{
		{
			name:     "oclc_number header",
			content:  "title,oclc_number\nBook A,44048183\nBook B, 9999 \nBook C,\n",
			expected: []string{"44048183", "9999"},
		},
		{
			name:     "OCLC Number header",
			content:  "OCLC Number\n123\n",
			expected: []string{"123"},
		},
		{
			name:    "missing column",
			content: "title,isbn\nBook,123\n",
			wantErr: true,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "numbers.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write CSV: %v", err)
			}

			numbers, err := ReadNumbersCSV(path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadNumbersCSV returned error: %v", err)
			}
			if !reflect.DeepEqual(numbers, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, numbers)
			}
		})
	}
}
