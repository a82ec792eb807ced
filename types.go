package signdict

import (
	"sort"
	"strings"
)

// Rect represents a bounding box in page coordinates (origin top-left).
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 {
	return (r.Y0 + r.Y1) / 2
}

// ImageBlock is an embedded raster image placed on a page.
type ImageBlock struct {
	ID     int // Object index on the page
	Box    Rect
	Data   []byte
	Format string // "jpg", "png", ...
	Page   int    // 0-indexed page
}

// YPosition returns the top edge, used for vertical ordering.
func (b ImageBlock) YPosition() float64 {
	return b.Box.Y0
}

// TextBlock is a block of text with its bounding box.
type TextBlock struct {
	Text string
	Box  Rect
	Page int
}

// YPosition returns the top edge, used for vertical ordering.
func (b TextBlock) YPosition() float64 {
	return b.Box.Y0
}

// PageContent is everything the layout extractor pulls from one page:
// two unordered streams (images, text blocks) correlated only by
// position, plus the y-coordinates of horizontal separator rules.
type PageContent struct {
	Page       int
	Width      float64
	Height     float64
	Images     []ImageBlock
	TextBlocks []TextBlock
	Separators []float64 // sorted ascending
}

// PageRegion is a vertical slice of a page bounded by separator lines
// (or the whole page when the page has none).
type PageRegion struct {
	Images     []ImageBlock
	TextBlocks []TextBlock
	Page       int
	YStart     float64
	YEnd       float64
	Separators []float64 // all separators of the page
}

// FullText concatenates the region's text blocks in top-to-bottom order.
func (r PageRegion) FullText() string {
	blocks := make([]TextBlock, len(r.TextBlocks))
	copy(blocks, r.TextBlocks)
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].YPosition() < blocks[j].YPosition()
	})

	parts := make([]string, 0, len(blocks))
	for _, tb := range blocks {
		parts = append(parts, tb.Text)
	}
	return strings.Join(parts, "\n")
}

// SplitEntry is one dictionary entry carved out of a region's run-on
// text at a headword boundary. Its text always begins with Headword.
type SplitEntry struct {
	Headword string
	Text     string
	StartPos int // Character offset in the region text
	EndPos   int
}

// ParsedEntry is the durable structured record for one sign.
type ParsedEntry struct {
	Headword            string   `json:"headword"`
	Definition          string   `json:"definition,omitempty"`
	GrammaticalCategory string   `json:"grammatical_category,omitempty"`
	VerbType            string   `json:"verb_type,omitempty"`
	VariantNumber       int      `json:"variant_number"`
	PageNumber          int      `json:"page_number"`
	Translations        []string `json:"translations"` // first is primary
	Synonyms            []string `json:"synonyms,omitempty"`
	Antonyms            []string `json:"antonyms,omitempty"`
	ImagePaths          []string `json:"image_paths,omitempty"` // movement order
	RawText             string   `json:"-"`

	// Images carries the attributed raster blocks until they are
	// written out; not serialized.
	Images []ImageBlock `json:"-"`
}
