// Package dublincore maps unified records onto the bilingual Dublin Core
// output schema and validates their completeness.
package dublincore

import (
	"context"
	"fmt"
	"strings"

	"github.com/archivo-venezuela/archivero/internal/record"
	"github.com/archivo-venezuela/archivero/internal/translate"
)

// fieldAliases is the ordered list of accepted key spellings per logical
// field. Records arrive from several sources with inconsistent casing; the
// first alias present wins.
var fieldAliases = map[string][]string{
	"source":      {"source", "Source"},
	"id":          {"id", "Identifier"},
	"title":       {"title", "Title"},
	"creator":     {"creator", "Creator"},
	"description": {"description", "Description"},
	"date":        {"date", "Date"},
	"tags":        {"tags", "Tags"},
	"media_urls":  {"media_urls", "Media URLs"},
}

// requiredFields are the completeness checks, in report order.
var requiredFields = []string{
	"Title (EN)",
	"Creator (EN)",
	"Description (EN)",
	"Date",
}

// Map converts one loosely-typed record into a bilingual Dublin Core row.
// English values are carried verbatim; Spanish values come from the
// translator, which falls back to the English text on failure, so a Spanish
// field is never empty when its English counterpart is not.
func Map(ctx context.Context, item map[string]any, translator *translate.Translator) record.Bilingual {
	title := lookupString(item, "title")
	creator := lookupString(item, "creator")
	description := lookupString(item, "description")

	b := record.Bilingual{
		Source:        lookupString(item, "source"),
		Identifier:    lookupString(item, "id"),
		TitleEN:       title,
		TitleES:       translator.Translate(ctx, title, "es").Text,
		CreatorEN:     creator,
		CreatorES:     translator.Translate(ctx, creator, "es").Text,
		DescriptionEN: description,
		DescriptionES: translator.Translate(ctx, description, "es").Text,
		Date:          lookupString(item, "date"),
		Tags:          strings.Join(lookupStrings(item, "tags"), "; "),
		MediaURL:      firstString(lookupStrings(item, "media_urls")),
	}

	b.MissingFields = Validate(b)
	return b
}

// Validate returns the names of required fields that are empty after
// trimming, in fixed order. An empty result means the record is complete.
func Validate(b record.Bilingual) []string {
	values := map[string]string{
		"Title (EN)":       b.TitleEN,
		"Creator (EN)":     b.CreatorEN,
		"Description (EN)": b.DescriptionEN,
		"Date":             b.Date,
	}

	missing := []string{}
	for _, field := range requiredFields {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Row renders the bilingual record as a column-name-to-value map matching
// BilingualHeader, as consumed by the Omeka publisher.
func Row(b record.Bilingual) map[string]string {
	return map[string]string{
		"Source":           b.Source,
		"Identifier":       b.Identifier,
		"Title (EN)":       b.TitleEN,
		"Title (ES)":       b.TitleES,
		"Creator (EN)":     b.CreatorEN,
		"Creator (ES)":     b.CreatorES,
		"Description (EN)": b.DescriptionEN,
		"Description (ES)": b.DescriptionES,
		"Date":             b.Date,
		"Tags":             b.Tags,
		"Media URL":        b.MediaURL,
		"Missing Fields":   strings.Join(b.MissingFields, ", "),
	}
}

// lookupString resolves a logical field through its alias list.
func lookupString(item map[string]any, field string) string {
	for _, key := range fieldAliases[field] {
		if v, ok := item[key]; ok {
			if s := anyToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// lookupStrings resolves a logical sequence field through its alias list.
func lookupStrings(item map[string]any, field string) []string {
	for _, key := range fieldAliases[field] {
		v, ok := item[key]
		if !ok {
			continue
		}
		switch vv := v.(type) {
		case []string:
			return vv
		case []any:
			out := make([]string, 0, len(vv))
			for _, e := range vv {
				if s := anyToString(e); s != "" {
					out = append(out, s)
				}
			}
			return out
		case string:
			if vv == "" {
				return nil
			}
			return []string{vv}
		}
	}
	return nil
}

func firstString(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// anyToString renders JSON scalar values as strings. Numbers lose no
// precision for the integer identifiers seen in practice.
func anyToString(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case float64:
		if vv == float64(int64(vv)) {
			return fmt.Sprintf("%d", int64(vv))
		}
		return fmt.Sprintf("%v", vv)
	case int:
		return fmt.Sprintf("%d", vv)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", vv)
	}
}
