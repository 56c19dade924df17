package omeka

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// dcElement pairs an output field name with its Dublin Core element id in
// the destination Omeka instance. English and Spanish variants share an id,
// and both the aggregator's (EN)/(ES) names and the WorldCat export's
// (English)/(Spanish) names are accepted.
type dcElement struct {
	Field string
	ID    int
}

// dcElements is the fixed field-id scheme, in payload order. Fields not
// listed here are never published.
var dcElements = []dcElement{
	{"Title (EN)", 50},
	{"Title (ES)", 50},
	{"Title (English)", 50},
	{"Title (Spanish)", 50},
	{"Creator (EN)", 39},
	{"Creator (ES)", 39},
	{"Author (English)", 39},
	{"Author (Spanish)", 39},
	{"Tags", 49},
	{"Subjects (English)", 49},
	{"Subjects (Spanish)", 49},
	{"Description (EN)", 41},
	{"Description (ES)", 41},
	{"Description (English)", 41},
	{"Description (Spanish)", 41},
	{"Date", 40},
	{"Language (English)", 44},
	{"Language (Spanish)", 44},
	{"Publisher (English)", 45},
	{"Publisher (Spanish)", 45},
	{"Format (English)", 42},
	{"Format (Spanish)", 42},
}

// ItemPayload is the create-item request body.
type ItemPayload struct {
	Public       bool          `json:"public"`
	Featured     bool          `json:"featured"`
	ElementTexts []ElementText `json:"element_texts"`
}

// ElementText is one metadata value in the create-item payload.
type ElementText struct {
	Element ElementRef `json:"element"`
	Text    string     `json:"text"`
	HTML    bool       `json:"html"`
}

// ElementRef identifies a Dublin Core element by id.
type ElementRef struct {
	ID int `json:"id"`
}

// BuildItemPayload converts one output row into the create-item payload.
// Fields that are empty after trimming or absent from the element scheme
// are skipped.
func BuildItemPayload(row map[string]string) ItemPayload {
	payload := ItemPayload{
		Public:       true,
		Featured:     false,
		ElementTexts: []ElementText{},
	}

	for _, el := range dcElements {
		value, ok := row[el.Field]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		payload.ElementTexts = append(payload.ElementTexts, ElementText{
			Element: ElementRef{ID: el.ID},
			Text:    value,
			HTML:    false,
		})
	}

	return payload
}

// Publisher creates items in an Omeka instance.
type Publisher struct {
	APIURL     string
	APIKey     string
	httpClient *http.Client
}

// NewPublisher creates a Publisher for the given items endpoint.
func NewPublisher(apiURL, apiKey string) *Publisher {
	return &Publisher{
		APIURL: strings.TrimRight(apiURL, "/"),
		APIKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Publish creates one item and returns the provider status code and raw
// response body. Transport failures come back as (0, error text); Publish
// never returns an error, so a multi-record loop can tally and continue.
func (p *Publisher) Publish(ctx context.Context, row map[string]string) (int, string) {
	payload := BuildItemPayload(row)

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err.Error()
	}

	createURL := p.APIURL
	if p.APIKey != "" {
		createURL += "?key=" + url.QueryEscape(p.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, createURL, bytes.NewReader(body))
	if err != nil {
		return 0, err.Error()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, err.Error()
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(respBody)
}
