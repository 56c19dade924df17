// Package worldcat implements the WorldCat Search API adapter: OAuth token
// caching, bibliographic record lookup by OCLC number, and normalization of
// the nested bib document into the unified record schema.
package worldcat

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/archivo-venezuela/archivero/internal/record"
)

const defaultBaseURL = "https://americas.discovery.api.oclc.org/worldcat/search/v2"

// ErrNotFound means the catalog had no record for the requested number.
var ErrNotFound = errors.New("worldcat record not found")

// batchDelay is the courtesy pause between successive catalog lookups.
const batchDelay = 1 * time.Second

// Client is an authenticated WorldCat Search API client.
type Client struct {
	BaseURL    string
	Tokens     *TokenCache
	httpClient *http.Client
}

// NewClient creates a WorldCat client using the given token cache.
func NewClient(tokens *TokenCache) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		Tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Bib holds the fields extracted from a WorldCat bibliographic document.
// Every field degrades to empty when its path is absent.
type Bib struct {
	Title       string
	Creator     string
	Subjects    []string
	Publisher   string
	Description string
	Format      string
	Date        string
	Language    string
}

// Lookup fetches the bib document for one OCLC number. A non-200 response
// maps to ErrNotFound so callers can accumulate the failing identifier and
// keep going.
func (c *Client) Lookup(ctx context.Context, oclcNumber string) (Bib, error) {
	token, err := c.Tokens.Get(ctx)
	if err != nil {
		return Bib{}, err
	}

	lookupURL := fmt.Sprintf("%s/bibs/%s", c.BaseURL, oclcNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return Bib{}, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Value)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Bib{}, fmt.Errorf("failed to fetch record %s: %w", oclcNumber, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Bib{}, ErrNotFound
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Bib{}, fmt.Errorf("failed to decode record %s: %w", oclcNumber, err)
	}

	return ParseBib(doc), nil
}

// ParseBib extracts the bib fields from a decoded WorldCat document.
// Missing nested structure degrades to empty fields, never an error.
func ParseBib(doc map[string]any) Bib {
	bib := Bib{
		Title:       pathString(doc, "title", "mainTitles", 0, "text"),
		Publisher:   pathString(doc, "publishers", 0, "publisherName", "text"),
		Description: pathString(doc, "description", "physicalDescription"),
		Format:      pathString(doc, "format", "generalFormat"),
		Date:        pathString(doc, "date", "publicationDate"),
		Language:    pathString(doc, "language", "itemLanguage"),
	}
	if bib.Description == "" {
		bib.Description = pathString(doc, "description", "abstract")
	}

	// First creator: prefer the direct name, fall back to the first-name
	// sub-object.
	bib.Creator = pathString(doc, "contributor", "creators", 0, "name")
	if bib.Creator == "" {
		bib.Creator = pathString(doc, "contributor", "creators", 0, "firstName", "text")
	}

	for _, s := range pathSlice(doc, "subjects") {
		subject := pathString(s, "subjectName", "text")
		if subject == "" {
			subject = pathString(s, "label")
		}
		if subject != "" {
			bib.Subjects = append(bib.Subjects, subject)
		}
	}

	return bib
}

// Normalize maps a bib document onto the unified record schema.
func Normalize(bib Bib, oclcNumber string) record.Unified {
	rec := record.NewUnified(record.SourceWorldCat, oclcNumber)
	rec.Title = bib.Title
	rec.Creator = bib.Creator
	rec.Description = bib.Description
	rec.Date = bib.Date
	if len(bib.Subjects) > 0 {
		rec.Tags = append(rec.Tags, bib.Subjects...)
	}
	return rec
}

// FetchBatch looks up each OCLC number in turn with a courtesy delay,
// returning the normalized records plus the identifiers that failed. Only
// an auth failure aborts the batch.
func (c *Client) FetchBatch(ctx context.Context, oclcNumbers []string) ([]record.Unified, []string, error) {
	var records []record.Unified
	var failed []string

	for i, number := range oclcNumbers {
		number = strings.TrimSpace(number)
		if number == "" {
			continue
		}

		bib, err := c.Lookup(ctx, number)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) {
				return records, failed, err
			}
			slog.Warn("WorldCat lookup failed", "oclc", number, "err", err)
			failed = append(failed, number)
		} else {
			records = append(records, Normalize(bib, number))
		}

		if i < len(oclcNumbers)-1 {
			time.Sleep(batchDelay)
		}
	}

	return records, failed, nil
}

// ReadNumbersCSV reads OCLC numbers from a CSV whose header contains one of
// the accepted column names (oclc, oclc_number, oclc number).
func ReadNumbersCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV %s is empty", path)
	}

	col := -1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "oclc", "oclc_number", "oclc number":
			col = i
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("CSV must contain one of: oclc, oclc_number, 'OCLC Number'")
	}

	var numbers []string
	for _, row := range rows[1:] {
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			numbers = append(numbers, strings.TrimSpace(row[col]))
		}
	}
	return numbers, nil
}

// pathString walks obj through keys (string map keys and int slice indexes)
// and returns the string found at the end, or "" on any miss.
func pathString(obj any, keys ...any) string {
	v := path(obj, keys...)
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// pathSlice walks obj through keys and returns the slice found at the end.
func pathSlice(obj any, keys ...any) []any {
	v := path(obj, keys...)
	s, _ := v.([]any)
	return s
}

func path(obj any, keys ...any) any {
	current := obj
	for _, key := range keys {
		switch k := key.(type) {
		case string:
			m, ok := current.(map[string]any)
			if !ok {
				return nil
			}
			current = m[k]
		case int:
			s, ok := current.([]any)
			if !ok || k < 0 || k >= len(s) {
				return nil
			}
			current = s[k]
		default:
			return nil
		}
	}
	return current
}
