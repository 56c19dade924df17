package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleTranslateURL = "https://translate.googleapis.com/translate_a/single"

// Google translates through the public gtx translate endpoint. It needs no
// credential, matching the archive's zero-budget translation setup.
type Google struct {
	baseURL    string
	httpClient *http.Client
}

// NewGoogle creates a Google translate provider.
func NewGoogle() *Google {
	return &Google{
		baseURL: googleTranslateURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Translate translates text into targetLang, auto-detecting the source
// language.
func (g *Google) Translate(ctx context.Context, text, targetLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create translate request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call translate endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translate endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	// The gtx endpoint answers with nested arrays; the first element holds
	// the translated segments: [[["Hola", "Hello", ...], ...], ...]
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("failed to decode translate response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("failed to decode translate segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(seg[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}

	result := sb.String()
	if result == "" {
		return "", fmt.Errorf("translate response contained no segments")
	}
	return result, nil
}
