package batch

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/archivo-venezuela/archivero/internal/record"
)

func sampleBilingual() record.Bilingual {
	return record.Bilingual{
		Source:        "worldcat",
		Identifier:    "44048183",
		TitleEN:       "My House",
		TitleES:       "Mi Casa",
		CreatorEN:     "Juana Pérez",
		CreatorES:     "Juana Pérez",
		DescriptionEN: "A photograph.",
		DescriptionES: "Una fotografía.",
		Date:          "1998",
		Tags:          "Migración; Caracas",
		MediaURL:      "http://img/1.jpg",
		MissingFields: []string{},
	}
}

func TestWriteAndReadBilingualCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	b := sampleBilingual()

	if err := WriteBilingualCSV(path, []record.Bilingual{b}); err != nil {
		t.Fatalf("WriteBilingualCSV returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Error("Expected UTF-8 BOM prefix")
	}

	rows, err := ReadBilingualCSV(path)
	if err != nil {
		t.Fatalf("ReadBilingualCSV returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0]["Title (ES)"] != "Mi Casa" {
		t.Errorf("Expected Mi Casa, got %s", rows[0]["Title (ES)"])
	}
	if rows[0]["Tags"] != "Migración; Caracas" {
		t.Errorf("Expected accents to survive the round trip, got %s", rows[0]["Tags"])
	}

	if got := RowToBilingual(rows[0]); !reflect.DeepEqual(got, b) {
		t.Errorf("Expected round-tripped record %+v, got %+v", b, got)
	}
}

func TestRowToBilingualMissingFields(t *testing.T) {
	b := RowToBilingual(map[string]string{
		"Source":         "omeka",
		"Missing Fields": "Creator (EN), Date",
	})

	expected := []string{"Creator (EN)", "Date"}
	if !reflect.DeepEqual(b.MissingFields, expected) {
		t.Errorf("Expected %v, got %v", expected, b.MissingFields)
	}
}

func TestWriteIssuesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.csv")
	complete := sampleBilingual()
	incomplete := sampleBilingual()
	incomplete.Identifier = "bad"
	incomplete.MissingFields = []string{"Date"}

	if err := WriteIssuesCSV(path, []record.Bilingual{complete, incomplete}); err != nil {
		t.Fatalf("WriteIssuesCSV returned error: %v", err)
	}

	rows, err := ReadBilingualCSV(path)
	if err != nil {
		t.Fatalf("ReadBilingualCSV returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected only the incomplete row, got %d rows", len(rows))
	}
	if rows[0]["Identifier"] != "bad" {
		t.Errorf("Expected identifier bad, got %s", rows[0]["Identifier"])
	}
}

func TestWriteBilingualParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")

	if err := WriteBilingualParquet(path, []record.Bilingual{sampleBilingual()}); err != nil {
		t.Fatalf("WriteBilingualParquet returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected parquet file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected non-empty parquet file")
	}
}
