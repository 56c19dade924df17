// Package omdb implements the OMDb (IMDb) source adapter.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/archivo-venezuela/archivero/internal/htmltext"
	"github.com/archivo-venezuela/archivero/internal/record"
)

const defaultBaseURL = "https://www.omdbapi.com/"

// Client is an OMDb API client.
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewClient creates an OMDb client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// payload is the subset of the OMDb response the pipeline uses.
type payload struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	IMDbID   string `json:"imdbID"`
	Title    string `json:"Title"`
	Director string `json:"Director"`
	Writer   string `json:"Writer"`
	Plot     string `json:"Plot"`
	Year     string `json:"Year"`
	Genre    string `json:"Genre"`
	Poster   string `json:"Poster"`
}

// FetchByTitle looks up a film by title, optionally constrained to a year.
func (c *Client) FetchByTitle(ctx context.Context, title, year string) (record.Unified, error) {
	params := url.Values{}
	params.Set("t", title)
	if strings.TrimSpace(year) != "" {
		params.Set("y", strings.TrimSpace(year))
	}
	return c.fetch(ctx, params)
}

// FetchByID looks up a film by IMDb identifier.
func (c *Client) FetchByID(ctx context.Context, imdbID string) (record.Unified, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	return c.fetch(ctx, params)
}

func (c *Client) fetch(ctx context.Context, params url.Values) (record.Unified, error) {
	params.Set("apikey", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return record.Unified{}, fmt.Errorf("failed to create OMDb request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return record.Unified{}, fmt.Errorf("failed to call OMDb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return record.Unified{}, fmt.Errorf("OMDb returned status %d", resp.StatusCode)
	}

	var data payload
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return record.Unified{}, fmt.Errorf("failed to decode OMDb response: %w", err)
	}

	if data.Response != "True" {
		msg := data.Error
		if msg == "" {
			msg = "unknown error"
		}
		return record.Unified{}, fmt.Errorf("OMDb returned: %s", msg)
	}

	return Normalize(data), nil
}

// Normalize maps an OMDb payload onto the unified record schema. OMDb
// reports absent fields as the literal string "N/A"; those read as empty.
// The creator prefers the director, falling back to the writer.
func Normalize(data payload) record.Unified {
	rec := record.NewUnified(record.SourceOMDb, data.IMDbID)
	rec.Title = cleanField(data.Title)
	rec.Creator = cleanField(data.Director)
	if rec.Creator == "" {
		rec.Creator = cleanField(data.Writer)
	}
	rec.Description = cleanField(data.Plot)
	rec.Date = cleanField(data.Year)

	for _, genre := range strings.Split(cleanField(data.Genre), ",") {
		if g := strings.TrimSpace(genre); g != "" {
			rec.Tags = append(rec.Tags, g)
		}
	}

	if poster := cleanField(data.Poster); poster != "" {
		rec.MediaURLs = append(rec.MediaURLs, poster)
	}

	return rec
}

func cleanField(raw string) string {
	text := htmltext.Clean(raw)
	if text == "N/A" {
		return ""
	}
	return text
}
