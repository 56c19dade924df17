// Package keywords derives thematic subject phrases from free-text metadata.
// It implements RAKE-style phrase extraction: candidate phrases are the word
// runs between English stop words and punctuation, scored by word
// degree/frequency co-occurrence.
package keywords

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxPhraseWords = 3
	maxKeywords    = 8
)

var titleCaser = cases.Title(language.English)

// Extract returns up to 8 keyword phrases derived from title and
// description, title-cased, deduplicated, in descending score order.
// It never fails; unusable input yields an empty result.
func Extract(title, description string) []string {
	text := strings.TrimSpace(title + ". " + description)
	if strings.Trim(text, ". ") == "" {
		return nil
	}

	phrases := candidatePhrases(text)
	if len(phrases) == 0 {
		return nil
	}

	scores := wordScores(phrases)

	type scored struct {
		phrase string
		score  float64
	}
	ranked := make([]scored, 0, len(phrases))
	for _, p := range phrases {
		var s float64
		for _, w := range p {
			s += scores[w]
		}
		ranked = append(ranked, scored{phrase: strings.Join(p, " "), score: s})
	}

	// Stable sort keeps first-seen order among equal scores.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	seen := make(map[string]bool)
	var out []string
	for _, r := range ranked {
		if len(out) >= maxKeywords {
			break
		}
		phrase := strings.TrimSpace(titleCaser.String(r.phrase))
		if len(phrase) <= 2 || seen[phrase] {
			continue
		}
		seen[phrase] = true
		out = append(out, phrase)
	}

	return out
}

// candidatePhrases splits text into runs of content words, breaking at stop
// words and punctuation. Runs longer than maxPhraseWords are discarded.
func candidatePhrases(text string) [][]string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	var phrases [][]string
	var current []string
	flush := func() {
		if n := len(current); n > 0 && n <= maxPhraseWords {
			phrases = append(phrases, current)
		}
		current = nil
	}

	for _, w := range words {
		if stopWords[w] {
			flush()
			continue
		}
		current = append(current, w)
	}
	flush()

	return phrases
}

// wordScores computes the RAKE degree/frequency score per word.
func wordScores(phrases [][]string) map[string]float64 {
	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, p := range phrases {
		for _, w := range p {
			freq[w]++
			degree[w] += len(p) - 1
		}
	}

	scores := make(map[string]float64, len(freq))
	for w, f := range freq {
		scores[w] = float64(degree[w]+f) / float64(f)
	}
	return scores
}

// stopWords is the English stop word list used to delimit phrases.
var stopWords = func() map[string]bool {
	list := []string{
		"a", "about", "above", "after", "again", "against", "all", "am",
		"an", "and", "any", "are", "aren't", "as", "at", "be", "because",
		"been", "before", "being", "below", "between", "both", "but", "by",
		"can", "cannot", "could", "couldn't", "did", "didn't", "do", "does",
		"doesn't", "doing", "don't", "down", "during", "each", "few", "for",
		"from", "further", "had", "hadn't", "has", "hasn't", "have",
		"haven't", "having", "he", "her", "here", "hers", "herself", "him",
		"himself", "his", "how", "i", "if", "in", "into", "is", "isn't",
		"it", "its", "itself", "just", "me", "more", "most", "my", "myself",
		"no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
		"other", "our", "ours", "ourselves", "out", "over", "own", "s",
		"same", "she", "should", "shouldn't", "so", "some", "such", "t",
		"than", "that", "the", "their", "theirs", "them", "themselves",
		"then", "there", "these", "they", "this", "those", "through", "to",
		"too", "under", "until", "up", "very", "was", "wasn't", "we",
		"were", "weren't", "what", "when", "where", "which", "while", "who",
		"whom", "why", "will", "with", "won't", "would", "wouldn't", "you",
		"your", "yours", "yourself", "yourselves",
	}
	m := make(map[string]bool, len(list))
	for _, w := range list {
		m[w] = true
	}
	return m
}()
