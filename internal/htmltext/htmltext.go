// Package htmltext strips markup from metadata text values.
package htmltext

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Clean removes HTML tags, unescapes entities, and trims whitespace.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(raw, "")
	return strings.TrimSpace(html.UnescapeString(text))
}
