// Package oembed fetches embed metadata for media URLs through provider
// oEmbed endpoints. No credential is required.
package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/archivo-venezuela/archivero/internal/htmltext"
	"github.com/archivo-venezuela/archivero/internal/record"
)

// batchDelay is the courtesy pause between successive oEmbed calls.
const batchDelay = 300 * time.Millisecond

// Provider describes one oEmbed endpoint and the source tag its records
// carry.
type Provider struct {
	Source      string
	EndpointURL string
}

// Known providers.
var (
	YouTube = Provider{Source: record.SourceYouTube, EndpointURL: "https://www.youtube.com/oembed"}
	Spotify = Provider{Source: record.SourceSpotify, EndpointURL: "https://open.spotify.com/oembed"}
)

// Client fetches oEmbed metadata for one provider.
type Client struct {
	provider   Provider
	httpClient *http.Client
}

// NewClient creates an oEmbed client for the given provider.
func NewClient(provider Provider) *Client {
	return &Client{
		provider: provider,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// response is the subset of the oEmbed payload the pipeline uses.
type response struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Fetch retrieves embed metadata for one media URL and normalizes it. The
// provider supplies no description, date, or tags, so those stay empty.
func (c *Client) Fetch(ctx context.Context, mediaURL string) (record.Unified, error) {
	params := url.Values{}
	params.Set("url", mediaURL)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.provider.EndpointURL+"?"+params.Encode(), nil)
	if err != nil {
		return record.Unified{}, fmt.Errorf("failed to create oEmbed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return record.Unified{}, fmt.Errorf("failed to call oEmbed endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return record.Unified{}, fmt.Errorf("oEmbed endpoint returned status %d for %s", resp.StatusCode, mediaURL)
	}

	var data response
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return record.Unified{}, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	rec := record.NewUnified(c.provider.Source, mediaURL)
	rec.Title = htmltext.Clean(data.Title)
	rec.Creator = htmltext.Clean(data.AuthorName)
	if data.ThumbnailURL != "" {
		rec.MediaURLs = append(rec.MediaURLs, data.ThumbnailURL)
	}
	return rec, nil
}

// FetchBatch fetches each URL in turn with a courtesy delay. Failing URLs
// are skipped with a warning and reported back; they never abort the batch.
func (c *Client) FetchBatch(ctx context.Context, mediaURLs []string) ([]record.Unified, []string) {
	var records []record.Unified
	var failed []string

	for i, mediaURL := range mediaURLs {
		rec, err := c.Fetch(ctx, mediaURL)
		if err != nil {
			slog.Warn("oEmbed fetch failed", "source", c.provider.Source, "url", mediaURL, "err", err)
			failed = append(failed, mediaURL)
		} else {
			records = append(records, rec)
		}

		if i < len(mediaURLs)-1 {
			time.Sleep(batchDelay)
		}
	}

	return records, failed
}
