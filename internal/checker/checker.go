// Package checker audits existing Omeka records for missing metadata,
// broken images, and dead links.
package checker

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/archivo-venezuela/archivero/internal/omeka"
)

// ItemSource supplies the detailed items to audit.
type ItemSource interface {
	Recent(ctx context.Context, limit int) ([]omeka.DetailedItem, error)
}

// Result is the audit outcome for one item.
type Result struct {
	ItemID      int
	Title       string
	Creator     string
	Description string
	Date        string
	ImageURL    string
	ImageStatus string
	LinksStatus string
	Overall     string
}

// Checker runs the metadata audit.
type Checker struct {
	source     ItemSource
	httpClient *http.Client
}

// New creates a Checker over an item source.
func New(source ItemSource) *Checker {
	return &Checker{
		source: source,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Run audits the most recent limit items.
func (c *Checker) Run(ctx context.Context, limit int) ([]Result, error) {
	items, err := c.source.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, c.checkItem(ctx, item))
	}
	return results, nil
}

func (c *Checker) checkItem(ctx context.Context, item omeka.DetailedItem) Result {
	r := Result{
		ItemID:      item.ID,
		Title:       item.Title,
		Creator:     item.Creator,
		Description: truncate(item.Description, 80),
		Date:        item.Date,
	}

	hasImage := len(item.MediaURLs) > 0
	imageOK := false
	if hasImage {
		r.ImageURL = item.MediaURLs[0]
		if strings.HasPrefix(r.ImageURL, "http") {
			imageOK = c.urlReachable(ctx, r.ImageURL)
		}
	}
	switch {
	case !hasImage:
		r.ImageStatus = "none"
	case imageOK:
		r.ImageStatus = "ok"
	default:
		r.ImageStatus = "broken"
	}

	switch {
	case len(item.Links) == 0:
		r.LinksStatus = "none"
	case c.anyReachable(ctx, item.Links):
		r.LinksStatus = "ok"
	default:
		r.LinksStatus = "invalid"
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"Title", item.Title},
		{"Creator", item.Creator},
		{"Description", item.Description},
		{"Date", item.Date},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}

	status := "Complete"
	if len(missing) > 0 {
		status = "Missing: " + strings.Join(missing, ", ")
	}
	if hasImage && !imageOK {
		status += " | Broken Image"
	}
	r.Overall = status

	return r
}

// urlReachable reports whether a HEAD request succeeds with a non-error
// status.
func (c *Checker) urlReachable(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

func (c *Checker) anyReachable(ctx context.Context, urls []string) bool {
	for _, u := range urls {
		if c.urlReachable(ctx, u) {
			return true
		}
	}
	return false
}

// WriteCSV writes the audit report.
func WriteCSV(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"Item ID", "Title", "Creator", "Description", "Date", "Image URL", "Image Status", "Links", "Overall Status"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, r := range results {
		row := []string{
			fmt.Sprintf("%d", r.ItemID),
			r.Title,
			r.Creator,
			r.Description,
			r.Date,
			r.ImageURL,
			r.ImageStatus,
			r.LinksStatus,
			r.Overall,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
