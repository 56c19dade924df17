// Package enrich derives translated semantic subject phrases for mapped
// records.
package enrich

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/archivo-venezuela/archivero/internal/keywords"
	"github.com/archivo-venezuela/archivero/internal/record"
	"github.com/archivo-venezuela/archivero/internal/translate"
)

// recordDelay paces translation calls between records.
const recordDelay = 500 * time.Millisecond

// Subjects holds the keyword-derived bilingual subject phrases for one
// record.
type Subjects struct {
	Identifier string
	Title      string
	Creator    string
	SubjectsEN string
	SubjectsES string
}

// Records extracts thematic subject phrases from each record's English
// title and description and translates them. Records without a title are
// skipped.
func Records(ctx context.Context, records []record.Bilingual, translator *translate.Translator) []Subjects {
	var out []Subjects

	for i, b := range records {
		title := strings.TrimSpace(b.TitleEN)
		if title == "" {
			continue
		}

		subjectsEN := keywords.Extract(title, strings.TrimSpace(b.DescriptionEN))
		subjectsES := make([]string, 0, len(subjectsEN))
		for _, s := range subjectsEN {
			subjectsES = append(subjectsES, translator.Translate(ctx, s, "es").Text)
		}

		out = append(out, Subjects{
			Identifier: b.Identifier,
			Title:      title,
			Creator:    b.CreatorEN,
			SubjectsEN: strings.Join(subjectsEN, "; "),
			SubjectsES: strings.Join(subjectsES, "; "),
		})

		if i < len(records)-1 {
			time.Sleep(recordDelay)
		}
	}

	return out
}

// WriteCSV writes the subject enrichment dataset.
func WriteCSV(path string, subjects []Subjects) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Identifier", "Title", "Creator", "Subjects (EN)", "Subjects (ES)"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range subjects {
		if err := w.Write([]string{s.Identifier, s.Title, s.Creator, s.SubjectsEN, s.SubjectsES}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
