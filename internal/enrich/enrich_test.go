package enrich

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/archivo-venezuela/archivero/internal/record"
	"github.com/archivo-venezuela/archivero/internal/translate"
)

type echoProvider struct{}

func (echoProvider) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return "es:" + text, nil
}

func TestRecords(t *testing.T) {
	translator := translate.New(echoProvider{}, nil)
	records := []record.Bilingual{
		{Identifier: "1", TitleEN: "Oral history interview", CreatorEN: "Juana", DescriptionEN: "Memories of exile."},
		{Identifier: "2", TitleEN: "   "},
	}

	subjects := Records(context.Background(), records, translator)

	if len(subjects) != 1 {
		t.Fatalf("Expected untitled record skipped, got %d results", len(subjects))
	}

	s := subjects[0]
	if s.Identifier != "1" || s.Creator != "Juana" {
		t.Errorf("Expected identifier and creator carried over, got %+v", s)
	}
	if !strings.Contains(s.SubjectsEN, "Oral History Interview") {
		t.Errorf("Expected extracted phrase, got %q", s.SubjectsEN)
	}
	if !strings.Contains(s.SubjectsES, "es:") {
		t.Errorf("Expected translated subjects, got %q", s.SubjectsES)
	}

	enCount := len(strings.Split(s.SubjectsEN, "; "))
	esCount := len(strings.Split(s.SubjectsES, "; "))
	if enCount != esCount {
		t.Errorf("Expected matching EN/ES subject counts, got %d and %d", enCount, esCount)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjects.csv")
	subjects := []Subjects{{
		Identifier: "1",
		Title:      "Oral history interview",
		Creator:    "Juana",
		SubjectsEN: "Oral History Interview; Exile",
		SubjectsES: "Entrevista De Historia Oral; Exilio",
	}}

	if err := WriteCSV(path, subjects); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d rows", len(rows))
	}
	if rows[0][3] != "Subjects (EN)" || rows[0][4] != "Subjects (ES)" {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if rows[1][4] != "Entrevista De Historia Oral; Exilio" {
		t.Errorf("Expected Spanish subjects, got %s", rows[1][4])
	}
}
