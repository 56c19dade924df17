package omeka

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func elementsByID(p ItemPayload) map[int][]string {
	out := make(map[int][]string)
	for _, et := range p.ElementTexts {
		out[et.Element.ID] = append(out[et.Element.ID], et.Text)
	}
	return out
}

func TestBuildItemPayload(t *testing.T) {
	row := map[string]string{
		"Title (EN)":       "My House",
		"Title (ES)":       "Mi Casa",
		"Creator (EN)":     "Juana Pérez",
		"Description (EN)": "A photograph.",
		"Date":             "1998",
		"Tags":             "Migración; Caracas",
	}

	payload := BuildItemPayload(row)

	if !payload.Public {
		t.Error("Expected items to publish as public")
	}
	if payload.Featured {
		t.Error("Expected items to publish unfeatured")
	}

	byID := elementsByID(payload)
	if len(byID[50]) != 2 {
		t.Errorf("Expected 2 title elements, got %v", byID[50])
	}
	if byID[50][0] != "My House" || byID[50][1] != "Mi Casa" {
		t.Errorf("Expected English before Spanish titles, got %v", byID[50])
	}
	if len(byID[39]) != 1 || byID[39][0] != "Juana Pérez" {
		t.Errorf("Expected one creator element, got %v", byID[39])
	}
	if len(byID[49]) != 1 || byID[49][0] != "Migración; Caracas" {
		t.Errorf("Expected one tags element, got %v", byID[49])
	}
	if len(byID[40]) != 1 || byID[40][0] != "1998" {
		t.Errorf("Expected one date element, got %v", byID[40])
	}
}

func TestBuildItemPayloadLegacyFieldNames(t *testing.T) {
	row := map[string]string{
		"Title (English)":  "My House",
		"Author (English)": "Juana Pérez",
		"Format (English)": "Image",
	}

	byID := elementsByID(BuildItemPayload(row))

	if len(byID[50]) != 1 {
		t.Errorf("Expected exactly one title element, got %v", byID[50])
	}
	if len(byID[39]) != 1 {
		t.Errorf("Expected Author name to map to the creator element, got %v", byID[39])
	}
	if len(byID[42]) != 1 {
		t.Errorf("Expected format element, got %v", byID[42])
	}
}

func TestBuildItemPayloadSkipsEmptyAndUnknown(t *testing.T) {
	row := map[string]string{
		"Title (EN)":     "My House",
		"Date":           "   ",
		"Source":         "worldcat",
		"Missing Fields": "Date",
	}

	payload := BuildItemPayload(row)
	if len(payload.ElementTexts) != 1 {
		t.Fatalf("Expected only the title element, got %d elements", len(payload.ElementTexts))
	}
	if payload.ElementTexts[0].Element.ID != 50 {
		t.Errorf("Expected element id 50, got %d", payload.ElementTexts[0].Element.ID)
	}
}

func TestPublish(t *testing.T) {
	var received ItemPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if key := r.URL.Query().Get("key"); key != "secret" {
			t.Errorf("Expected key secret, got %s", key)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 99}`))
	}))
	defer server.Close()

	p := NewPublisher(server.URL, "secret")
	status, body := p.Publish(context.Background(), map[string]string{"Title (EN)": "My House"})

	if status != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", status)
	}
	if body != `{"id": 99}` {
		t.Errorf("Expected response body passthrough, got %s", body)
	}
	if len(received.ElementTexts) != 1 || received.ElementTexts[0].Text != "My House" {
		t.Errorf("Expected title element in payload, got %+v", received.ElementTexts)
	}
}

func TestPublishTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewPublisher(server.URL, "")
	status, body := p.Publish(context.Background(), map[string]string{"Title (EN)": "X"})

	if status != 0 {
		t.Errorf("Expected status 0 for transport failure, got %d", status)
	}
	if body == "" {
		t.Error("Expected error text in body")
	}
}
