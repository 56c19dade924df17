package translate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini translates through the Google Gemini API. It produces better
// results than the free endpoint for long descriptions but needs
// GEMINI_API_KEY set.
type Gemini struct {
	model string
}

// NewGemini creates a Gemini translate provider. The model defaults to
// gemini-1.5-flash and can be overridden with GEMINI_MODEL.
func NewGemini() *Gemini {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Gemini{model: model}
}

// Translate translates text into targetLang using Gemini.
func (g *Gemini) Translate(ctx context.Context, text, targetLang string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0)

	prompt := fmt.Sprintf(
		"Translate the following text into the language with ISO code %q. "+
			"Reply with the translation only, no explanation, no quotes.\n\n%s",
		targetLang, text)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return strings.TrimSpace(string(txt)), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
