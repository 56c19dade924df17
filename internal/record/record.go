// Package record defines the interchange schemas shared by every pipeline
// stage: the unified record each source adapter produces and the bilingual
// Dublin Core record the mapper emits.
package record

// Source tags identifying record provenance.
const (
	SourceWorldCat = "worldcat"
	SourceOMDb     = "omdb"
	SourceYouTube  = "youtube"
	SourceSpotify  = "spotify"
	SourceOmeka    = "omeka"
)

// Unified is the common normalized shape every source adapter produces.
// All fields are always present in the persisted JSON; an absent key is a
// defect, so none of them carry omitempty.
type Unified struct {
	Source      string   `json:"source"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Creator     string   `json:"creator"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	MediaURLs   []string `json:"media_urls"`
}

// NewUnified returns a record with the sequence fields initialized so they
// marshal as [] rather than null.
func NewUnified(source, id string) Unified {
	return Unified{
		Source:    source,
		ID:        id,
		Tags:      []string{},
		MediaURLs: []string{},
	}
}

// Bilingual is the enriched English+Spanish Dublin Core output row.
type Bilingual struct {
	Source        string
	Identifier    string
	TitleEN       string
	TitleES       string
	CreatorEN     string
	CreatorES     string
	DescriptionEN string
	DescriptionES string
	Date          string
	Tags          string
	MediaURL      string
	MissingFields []string
}

// BilingualHeader is the fixed column order of the bilingual CSV dataset.
var BilingualHeader = []string{
	"Source",
	"Identifier",
	"Title (EN)",
	"Title (ES)",
	"Creator (EN)",
	"Creator (ES)",
	"Description (EN)",
	"Description (ES)",
	"Date",
	"Tags",
	"Media URL",
	"Missing Fields",
}

// Complete reports whether validation found no missing required fields.
func (b Bilingual) Complete() bool {
	return len(b.MissingFields) == 0
}
