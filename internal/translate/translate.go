// Package translate provides best-effort machine translation of metadata
// fields. A small manual dictionary of domain terms is checked before any
// provider call; provider failures fall back to the original text so the
// pipeline never stops on a translation error.
package translate

import (
	"context"
	"os"
	"strings"
)

// Outcome tags how a translation result was produced, so callers can
// distinguish a real translation from a fallback that returned the input.
type Outcome string

const (
	// OutcomeSkipped means the input was empty and nothing was attempted.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeOverride means the manual dictionary supplied the value.
	OutcomeOverride Outcome = "override"
	// OutcomeTranslated means the provider returned a usable translation.
	OutcomeTranslated Outcome = "translated"
	// OutcomeFallback means the provider failed and Text is the input.
	OutcomeFallback Outcome = "fallback"
)

// Result is the outcome of one translation. Text is always usable.
type Result struct {
	Text    string
	Outcome Outcome
	Err     error
}

// Provider performs the actual translation call.
type Provider interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// defaultOverrides are domain terms whose translations are fixed by the
// archive's style guide and must never be left to a provider.
var defaultOverrides = map[string]string{
	"Archive":      "Archivo",
	"Exile":        "Exilio",
	"Memory":       "Memoria",
	"Migration":    "Migración",
	"Oral History": "Historia Oral",
	"Photograph":   "Fotografía",
	"Unknown":      "Desconocido",
	"Untitled":     "Sin Título",
}

// Translator translates text with manual overrides and an identical-output
// retry heuristic layered over a Provider.
type Translator struct {
	provider  Provider
	overrides map[string]string
}

// New creates a Translator. Entries in extra are merged over the built-in
// dictionary and take precedence on key collision.
func New(provider Provider, extra map[string]string) *Translator {
	overrides := make(map[string]string, len(defaultOverrides)+len(extra))
	for k, v := range defaultOverrides {
		overrides[k] = v
	}
	for k, v := range extra {
		overrides[k] = v
	}
	return &Translator{provider: provider, overrides: overrides}
}

// NewFromEnv creates a Translator with the provider selected by the
// TRANSLATE_PROVIDER environment variable ("google" or "gemini").
func NewFromEnv(extra map[string]string) *Translator {
	switch os.Getenv("TRANSLATE_PROVIDER") {
	case "gemini":
		return New(NewGemini(), extra)
	default:
		return New(NewGoogle(), extra)
	}
}

// Translate translates text into targetLang. It never fails: on any
// provider error the original text comes back tagged OutcomeFallback.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Text: "", Outcome: OutcomeSkipped}
	}

	// The manual dictionary wins over the live provider, always.
	if mapped, ok := t.overrides[text]; ok {
		return Result{Text: mapped, Outcome: OutcomeOverride}
	}

	out, err := t.provider.Translate(ctx, text, targetLang)
	if err != nil {
		return Result{Text: text, Outcome: OutcomeFallback, Err: err}
	}

	// A result identical to the input usually means the provider passed the
	// text through untranslated. Retry once with the lower-cased input and
	// keep the retry only if it actually differs.
	if strings.EqualFold(out, text) {
		retry, rerr := t.provider.Translate(ctx, strings.ToLower(text), targetLang)
		if rerr == nil && !strings.EqualFold(retry, text) {
			return Result{Text: retry, Outcome: OutcomeTranslated}
		}
	}

	return Result{Text: out, Outcome: OutcomeTranslated}
}
