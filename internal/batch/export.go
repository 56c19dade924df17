package batch

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/archivo-venezuela/archivero/internal/record"
	"github.com/parquet-go/parquet-go"
)

// utf8BOM is prepended to CSV exports so spreadsheet tools detect the
// encoding of accented Spanish text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteBilingualCSV writes the bilingual dataset as UTF-8-with-BOM CSV in
// the fixed column order.
func WriteBilingualCSV(path string, records []record.Bilingual) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(record.BilingualHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, b := range records {
		row := []string{
			b.Source,
			b.Identifier,
			b.TitleEN,
			b.TitleES,
			b.CreatorEN,
			b.CreatorES,
			b.DescriptionEN,
			b.DescriptionES,
			b.Date,
			b.Tags,
			b.MediaURL,
			strings.Join(b.MissingFields, ", "),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteIssuesCSV writes only the records flagged incomplete, for human
// review.
func WriteIssuesCSV(path string, records []record.Bilingual) error {
	issues := make([]record.Bilingual, 0)
	for _, b := range records {
		if !b.Complete() {
			issues = append(issues, b)
		}
	}
	return WriteBilingualCSV(path, issues)
}

// ReadBilingualCSV reads a bilingual dataset back from CSV, tolerating the
// UTF-8 BOM, as column-name-to-value rows.
func ReadBilingualCSV(path string) ([]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytesTrimBOM(data)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV %s is empty", path)
	}

	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// RowToBilingual converts a CSV row map into the bilingual record type.
func RowToBilingual(row map[string]string) record.Bilingual {
	b := record.Bilingual{
		Source:        row["Source"],
		Identifier:    row["Identifier"],
		TitleEN:       row["Title (EN)"],
		TitleES:       row["Title (ES)"],
		CreatorEN:     row["Creator (EN)"],
		CreatorES:     row["Creator (ES)"],
		DescriptionEN: row["Description (EN)"],
		DescriptionES: row["Description (ES)"],
		Date:          row["Date"],
		Tags:          row["Tags"],
		MediaURL:      row["Media URL"],
		MissingFields: []string{},
	}
	if missing := strings.TrimSpace(row["Missing Fields"]); missing != "" {
		for _, f := range strings.Split(missing, ",") {
			b.MissingFields = append(b.MissingFields, strings.TrimSpace(f))
		}
	}
	return b
}

func bytesTrimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == utf8BOM[0] && data[1] == utf8BOM[1] && data[2] == utf8BOM[2] {
		return data[3:]
	}
	return data
}

// bilingualRow is the flat Parquet schema of one bilingual record.
type bilingualRow struct {
	Source        string `parquet:"source"`
	Identifier    string `parquet:"identifier"`
	TitleEN       string `parquet:"title_en"`
	TitleES       string `parquet:"title_es"`
	CreatorEN     string `parquet:"creator_en"`
	CreatorES     string `parquet:"creator_es"`
	DescriptionEN string `parquet:"description_en"`
	DescriptionES string `parquet:"description_es"`
	Date          string `parquet:"date"`
	Tags          string `parquet:"tags"`
	MediaURL      string `parquet:"media_url"`
	MissingFields string `parquet:"missing_fields"`
}

// WriteBilingualParquet writes the bilingual dataset as a Parquet file for
// downstream analysis tooling.
func WriteBilingualParquet(path string, records []record.Bilingual) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	writer := parquet.NewGenericWriter[bilingualRow](f)

	rows := make([]bilingualRow, 0, len(records))
	for _, b := range records {
		rows = append(rows, bilingualRow{
			Source:        b.Source,
			Identifier:    b.Identifier,
			TitleEN:       b.TitleEN,
			TitleES:       b.TitleES,
			CreatorEN:     b.CreatorEN,
			CreatorES:     b.CreatorES,
			DescriptionEN: b.DescriptionEN,
			DescriptionES: b.DescriptionES,
			Date:          b.Date,
			Tags:          b.Tags,
			MediaURL:      b.MediaURL,
			MissingFields: strings.Join(b.MissingFields, ", "),
		})
	}

	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
