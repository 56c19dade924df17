// Package omeka implements the Omeka Classic REST adapter: paginated item
// polling with per-item detail and files lookups, and item publishing
// against the Dublin Core element scheme.
package omeka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/archivo-venezuela/archivero/internal/htmltext"
	"github.com/archivo-venezuela/archivero/internal/record"
)

// maxPages is the hard ceiling on listing pages visited per poll.
const maxPages = 50

// pageDelay is the courtesy pause between listing pages.
const pageDelay = 300 * time.Millisecond

// Client talks to an Omeka Classic items API.
type Client struct {
	APIURL     string // e.g. https://example.org/api/items
	APIKey     string
	httpClient *http.Client

	// now is swappable for date-window tests.
	now func() time.Time
}

// NewClient creates an Omeka client for the given items endpoint.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		APIURL: strings.TrimRight(apiURL, "/"),
		APIKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// Item is one polled Omeka item, normalized for downstream enrichment.
type Item struct {
	ID          int      `json:"id"`
	DateAdded   string   `json:"date_added"`
	Title       string   `json:"title"`
	Creator     string   `json:"creator"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	MediaURLs   []string `json:"media_urls"`
}

// ToUnified maps the item onto the unified record schema.
func (it Item) ToUnified() record.Unified {
	rec := record.NewUnified(record.SourceOmeka, fmt.Sprintf("%d", it.ID))
	rec.Title = it.Title
	rec.Creator = it.Creator
	rec.Description = it.Description
	rec.Date = it.DateAdded
	rec.Tags = append(rec.Tags, it.Tags...)
	rec.MediaURLs = append(rec.MediaURLs, it.MediaURLs...)
	return rec
}

// listEntry is the slim per-item shape of the listing endpoint.
type listEntry struct {
	ID    int    `json:"id"`
	Added string `json:"added"`
	Files *struct {
		URL string `json:"url"`
	} `json:"files"`
}

// elementText is one element_texts entry of the item detail document.
type elementText struct {
	Element struct {
		Name string `json:"name"`
	} `json:"element"`
	Text string `json:"text"`
}

// itemDetail is the full item document.
type itemDetail struct {
	Tags         []json.RawMessage `json:"tags"`
	ElementTexts []elementText     `json:"element_texts"`
}

// Poll fetches items added within the last `days` days, visiting listing
// pages of size perPage up to the page ceiling. Items whose detail or files
// call fails are skipped, never retried. When the date window yields
// nothing, the first page comes back unfiltered so the caller sees data
// rather than silence.
func (c *Client) Poll(ctx context.Context, days, perPage int) ([]Item, error) {
	cutoff := c.now().UTC().AddDate(0, 0, -days)
	var results []Item

	for page := 1; page <= maxPages; page++ {
		entries, err := c.fetchPage(ctx, page, perPage)
		if err != nil {
			slog.Warn("Omeka listing page failed", "page", page, "err", err)
			break
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			added, err := time.Parse(time.RFC3339, entry.Added)
			if err != nil {
				continue
			}
			// Items outside the window are dropped before their detail
			// fetch is paid.
			if added.Before(cutoff) {
				continue
			}

			item, ok := c.buildItem(ctx, entry)
			if !ok {
				continue
			}
			item.DateAdded = added.Format("2006-01-02")
			results = append(results, item)
		}

		if page < maxPages {
			time.Sleep(pageDelay)
		}
	}

	if len(results) == 0 {
		slog.Info("No items in the selected date range, returning most recent page instead")
		return c.pollFirstPageUnfiltered(ctx, perPage)
	}

	return results, nil
}

// DetailedItem carries the extra fields the metadata checker inspects.
type DetailedItem struct {
	Item
	Date  string
	Links []string
}

// Recent fetches the most recent limit items with full detail, including
// the date element and any URL-bearing text values.
func (c *Client) Recent(ctx context.Context, limit int) ([]DetailedItem, error) {
	entries, err := c.fetchPage(ctx, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items list: %w", err)
	}

	var out []DetailedItem
	for _, entry := range entries {
		detail, err := c.fetchDetail(ctx, entry.ID)
		if err != nil {
			slog.Warn("Skipping item, detail fetch failed", "id", entry.ID, "err", err)
			continue
		}

		di := DetailedItem{Item: Item{
			ID:        entry.ID,
			Tags:      normalizeTags(detail.Tags),
			MediaURLs: []string{},
		}}

		for _, e := range detail.ElementTexts {
			text := htmltext.Clean(e.Text)
			switch strings.ToLower(strings.TrimSpace(e.Element.Name)) {
			case "title":
				di.Title = text
			case "creator":
				di.Creator = text
			case "description":
				di.Description = text
			case "date":
				di.Date = text
			}
			if strings.Contains(e.Text, "http") {
				di.Links = append(di.Links, strings.TrimSpace(e.Text))
			}
		}

		di.MediaURLs = c.fetchFileURLs(ctx, entry)
		out = append(out, di)
	}

	return out, nil
}

// pollFirstPageUnfiltered returns the first listing page without the date
// window applied.
func (c *Client) pollFirstPageUnfiltered(ctx context.Context, perPage int) ([]Item, error) {
	entries, err := c.fetchPage(ctx, 1, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	var results []Item
	for _, entry := range entries {
		item, ok := c.buildItem(ctx, entry)
		if !ok {
			continue
		}
		if len(entry.Added) >= 10 {
			item.DateAdded = entry.Added[:10]
		}
		results = append(results, item)
	}
	return results, nil
}

// buildItem fetches the detail and files documents for one listing entry
// and assembles the normalized item. A failed detail fetch skips the item.
func (c *Client) buildItem(ctx context.Context, entry listEntry) (Item, bool) {
	detail, err := c.fetchDetail(ctx, entry.ID)
	if err != nil {
		slog.Warn("Skipping item, detail fetch failed", "id", entry.ID, "err", err)
		return Item{}, false
	}

	item := Item{
		ID:        entry.ID,
		Tags:      normalizeTags(detail.Tags),
		MediaURLs: []string{},
	}

	for _, e := range detail.ElementTexts {
		text := htmltext.Clean(e.Text)
		switch strings.ToLower(strings.TrimSpace(e.Element.Name)) {
		case "title":
			item.Title = text
		case "creator":
			item.Creator = text
		case "description":
			item.Description = text
		}
	}

	item.MediaURLs = c.fetchFileURLs(ctx, entry)
	return item, true
}

// fetchPage retrieves one listing page.
func (c *Client) fetchPage(ctx context.Context, page, perPage int) ([]listEntry, error) {
	params := url.Values{}
	params.Set("per_page", fmt.Sprintf("%d", perPage))
	params.Set("page", fmt.Sprintf("%d", page))
	if c.APIKey != "" {
		params.Set("key", c.APIKey)
	}

	var entries []listEntry
	if err := c.getJSON(ctx, c.APIURL+"?"+params.Encode(), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// fetchDetail retrieves the full document for one item.
func (c *Client) fetchDetail(ctx context.Context, itemID int) (*itemDetail, error) {
	detailURL := fmt.Sprintf("%s/%d", c.APIURL, itemID)
	if c.APIKey != "" {
		detailURL += "?key=" + url.QueryEscape(c.APIKey)
	}

	var detail itemDetail
	if err := c.getJSON(ctx, detailURL, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// fetchFileURLs returns the original file URLs for an item. Failures
// degrade to no URLs; the item itself is still kept.
func (c *Client) fetchFileURLs(ctx context.Context, entry listEntry) []string {
	filesURL := ""
	if entry.Files != nil {
		filesURL = entry.Files.URL
	}
	if filesURL == "" {
		// Construct from the base path when the listing gives no files URL.
		filesURL = fmt.Sprintf("%s?item=%d", strings.Replace(c.APIURL, "/items", "/files", 1), entry.ID)
	} else if c.APIKey != "" {
		sep := "?"
		if strings.Contains(filesURL, "?") {
			sep = "&"
		}
		filesURL += sep + "key=" + url.QueryEscape(c.APIKey)
	}

	var files []struct {
		FileURLs struct {
			Original string `json:"original"`
		} `json:"file_urls"`
	}
	if err := c.getJSON(ctx, filesURL, &files); err != nil {
		slog.Warn("Files fetch failed", "id", entry.ID, "err", err)
		return []string{}
	}

	urls := []string{}
	for _, f := range files {
		if f.FileURLs.Original != "" {
			urls = append(urls, f.FileURLs.Original)
		}
	}
	return urls
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// normalizeTags flattens the tag list, which mixes plain strings and
// objects carrying a name field.
func normalizeTags(raw []json.RawMessage) []string {
	out := []string{}
	for _, t := range raw {
		var s string
		if err := json.Unmarshal(t, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(t, &obj); err == nil && obj.Name != "" {
			out = append(out, obj.Name)
		}
	}
	return out
}
