// Package captions generates bilingual social media captions for polled
// archive items.
package captions

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/archivo-venezuela/archivero/internal/omeka"
	"github.com/archivo-venezuela/archivero/internal/translate"
)

// Post is one draft social media post. The JSON field names match the
// posts_draft.json layout consumed by the sheet exporter.
type Post struct {
	Title     string `json:"Title"`
	Creator   string `json:"Creator"`
	CaptionEN string `json:"Caption_EN"`
	CaptionES string `json:"Caption_ES"`
	Hashtags  string `json:"Hashtags"`
	Image     string `json:"Image"`
}

const defaultHashtag = "#ArchivoVenezuela"

// maxDescriptionRunes caps how much of the description a caption quotes.
const maxDescriptionRunes = 200

// englishTemplates are the caption variants; one is picked at random per
// post. Arguments: title, creator, description.
var englishTemplates = []string{
	"Discover *%s* by %s, now part of Archivo Venezuela's digital collection. %s",
	"New from Archivo Venezuela: *%s* by %s. Explore this cultural piece — %s",
	"Explore the story of *%s* by %s, a new addition to our archive. %s",
}

// Generator produces bilingual posts.
type Generator struct {
	translator *translate.Translator
	rng        *rand.Rand
}

// NewGenerator creates a Generator. A nil rng uses the shared source.
func NewGenerator(translator *translate.Translator, rng *rand.Rand) *Generator {
	return &Generator{translator: translator, rng: rng}
}

// Generate builds one bilingual post for an item. The Spanish caption is
// machine-translated from the English one, with a deterministic Spanish
// template as the fallback.
func (g *Generator) Generate(ctx context.Context, item omeka.Item) Post {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}
	creator := strings.TrimSpace(item.Creator)
	if creator == "" {
		creator = "Unknown"
	}
	description := truncate(item.Description, maxDescriptionRunes)

	captionEN := fmt.Sprintf(g.pickTemplate(), title, creator, description)

	captionES := fmt.Sprintf("Descubre %s de %s, ahora en el archivo. %s", title, creator, description)
	if res := g.translator.Translate(ctx, captionEN, "es"); res.Outcome == translate.OutcomeTranslated || res.Outcome == translate.OutcomeOverride {
		captionES = res.Text
	}

	hashtags := buildHashtags(item.Tags)
	hashtagsES := g.translator.Translate(ctx, hashtags, "es").Text

	post := Post{
		Title:     title,
		Creator:   creator,
		CaptionEN: captionEN,
		CaptionES: captionES,
		Hashtags:  fmt.Sprintf("%s / %s", hashtags, hashtagsES),
	}
	if len(item.MediaURLs) > 0 {
		post.Image = item.MediaURLs[0]
	}
	return post
}

func (g *Generator) pickTemplate() string {
	if g.rng != nil {
		return englishTemplates[g.rng.Intn(len(englishTemplates))]
	}
	return englishTemplates[rand.Intn(len(englishTemplates))]
}

// buildHashtags renders tags as hashtags with spaces stripped, falling back
// to the archive's default tag.
func buildHashtags(tags []string) string {
	if len(tags) == 0 {
		return defaultHashtag
	}
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ReplaceAll(strings.TrimSpace(t), " ", "")
		if t != "" {
			parts = append(parts, "#"+t)
		}
	}
	if len(parts) == 0 {
		return defaultHashtag
	}
	return strings.Join(parts, " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
