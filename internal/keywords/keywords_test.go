package keywords

import (
	"reflect"
	"testing"
)

func TestExtractEmptyInput(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
	}{
		{"both empty", "", ""},
		{"whitespace only", "   ", "  "},
		{"punctuation only", ".", ". ."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.title, tt.description); got != nil {
				t.Errorf("Expected nil, got %v", got)
			}
		})
	}
}

func TestExtractPhrases(t *testing.T) {
	got := Extract("Oral history interview", "An interview about migration and exile from Caracas.")

	if len(got) == 0 {
		t.Fatal("Expected keywords, got none")
	}
	if len(got) > maxKeywords {
		t.Errorf("Expected at most %d keywords, got %d", maxKeywords, len(got))
	}

	// The three-word run before the first stop word should score highest:
	// every word in it has degree 2 while the single-word phrases have
	// degree 0.
	if got[0] != "Oral History Interview" {
		t.Errorf("Expected top phrase Oral History Interview, got %s", got[0])
	}

	seen := make(map[string]bool)
	for _, k := range got {
		if seen[k] {
			t.Errorf("Duplicate keyword %s", k)
		}
		seen[k] = true
		if len(k) <= 2 {
			t.Errorf("Keyword %q too short to keep", k)
		}
	}
}

func TestExtractTitleCases(t *testing.T) {
	got := Extract("venezuelan diaspora", "")
	expected := []string{"Venezuelan Diaspora"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestExtractDropsLongRuns(t *testing.T) {
	// Five content words with no stop word between them form a single run
	// longer than maxPhraseWords, so nothing survives.
	got := Extract("alpha beta gamma delta epsilon", "")
	if got != nil {
		t.Errorf("Expected nil for over-long phrase run, got %v", got)
	}
}

func TestCandidatePhrasesSplitsAtStopWords(t *testing.T) {
	got := candidatePhrases("memory of the venezuelan exile")
	expected := [][]string{{"memory"}, {"venezuelan", "exile"}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestWordScores(t *testing.T) {
	phrases := [][]string{{"oral", "history"}, {"history"}}
	scores := wordScores(phrases)

	// oral: freq 1, degree 1 -> (1+1)/1 = 2
	if scores["oral"] != 2 {
		t.Errorf("Expected score 2 for oral, got %v", scores["oral"])
	}
	// history: freq 2, degree 1 -> (1+2)/2 = 1.5
	if scores["history"] != 1.5 {
		t.Errorf("Expected score 1.5 for history, got %v", scores["history"])
	}
}
