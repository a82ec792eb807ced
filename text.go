package signdict

import (
	"math"
	"sort"
	"strings"

	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// pageChar is a single character with its bounding box in top-left
// origin coordinates.
type pageChar struct {
	Text rune
	Box  Rect
}

// textLine is a run of characters sharing a baseline.
type textLine struct {
	Text string
	Box  Rect
}

// extractTextBlocks pulls the page's characters and reassembles them
// into positioned text blocks: characters into lines by vertical
// overlap, lines into blocks by inter-line gap. Block text joins its
// lines with a single space.
func (r *Reader) extractTextBlocks(page references.FPDF_PAGE, pageIndex int, pageHeight float64) ([]TextBlock, error) {
	textPage, err := r.instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{ByReference: &page},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer r.instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	countResp, err := r.instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}
	if countResp.Count == 0 {
		return nil, nil
	}

	chars := r.extractChars(textPage.TextPage, countResp.Count, pageIndex, pageHeight)
	lines := groupCharsIntoLines(chars, r.cfg.LineOverlap)
	return groupLinesIntoBlocks(lines, r.cfg.BlockGap, pageIndex), nil
}

// extractChars reads each character's unicode value and box.
// Single-character failures are skipped.
func (r *Reader) extractChars(textPage references.FPDF_TEXTPAGE, count, pageIndex int, pageHeight float64) []pageChar {
	chars := make([]pageChar, 0, count)

	for i := 0; i < count; i++ {
		unicodeResp, err := r.instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil || unicodeResp.Unicode == 0 {
			r.log.Warn("unreadable character skipped",
				zap.Int("page", pageIndex+1), zap.Int("char", i))
			continue
		}

		boxResp, err := r.instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		// Convert PDF coordinates (origin bottom-left) to top-left origin.
		chars = append(chars, pageChar{
			Text: rune(unicodeResp.Unicode),
			Box: Rect{
				X0: boxResp.Left,
				Y0: pageHeight - boxResp.Top,
				X1: boxResp.Right,
				Y1: pageHeight - boxResp.Bottom,
			},
		})
	}

	return chars
}

// groupCharsIntoLines splits the character stream into lines. A line
// ends at an explicit line-break character or when the next character
// no longer overlaps the current line vertically.
func groupCharsIntoLines(chars []pageChar, minOverlap float64) []textLine {
	var lines []textLine

	var text strings.Builder
	var box Rect
	open := false

	flush := func() {
		if !open {
			return
		}
		trimmed := strings.TrimSpace(text.String())
		if trimmed != "" {
			lines = append(lines, textLine{Text: trimmed, Box: box})
		}
		text.Reset()
		open = false
	}

	for _, ch := range chars {
		if ch.Text == '\n' || ch.Text == '\r' {
			flush()
			continue
		}

		if open && verticalOverlapRatio(box, ch.Box) < minOverlap {
			flush()
		}

		if !open {
			box = ch.Box
			open = true
		} else {
			box.X0 = math.Min(box.X0, ch.Box.X0)
			box.Y0 = math.Min(box.Y0, ch.Box.Y0)
			box.X1 = math.Max(box.X1, ch.Box.X1)
			box.Y1 = math.Max(box.Y1, ch.Box.Y1)
		}
		text.WriteRune(ch.Text)
	}
	flush()

	return lines
}

// groupLinesIntoBlocks merges consecutive lines into blocks. A block
// closes when the gap to the next line exceeds gapFactor times the
// median line height. Lines within a block join with a single space.
func groupLinesIntoBlocks(lines []textLine, gapFactor float64, pageIndex int) []TextBlock {
	if len(lines) == 0 {
		return nil
	}

	maxGap := gapFactor * medianLineHeight(lines)

	var blocks []TextBlock
	current := []textLine{lines[0]}

	for _, line := range lines[1:] {
		prev := current[len(current)-1]
		if line.Box.Y0-prev.Box.Y1 > maxGap {
			blocks = append(blocks, buildBlock(current, pageIndex))
			current = current[:0]
		}
		current = append(current, line)
	}
	blocks = append(blocks, buildBlock(current, pageIndex))

	return blocks
}

func buildBlock(lines []textLine, pageIndex int) TextBlock {
	parts := make([]string, 0, len(lines))
	box := lines[0].Box
	for _, line := range lines {
		parts = append(parts, line.Text)
		box.X0 = math.Min(box.X0, line.Box.X0)
		box.Y0 = math.Min(box.Y0, line.Box.Y0)
		box.X1 = math.Max(box.X1, line.Box.X1)
		box.Y1 = math.Max(box.Y1, line.Box.Y1)
	}
	return TextBlock{
		Text: strings.Join(parts, " "),
		Box:  box,
		Page: pageIndex,
	}
}

func medianLineHeight(lines []textLine) float64 {
	heights := make([]float64, 0, len(lines))
	for _, line := range lines {
		heights = append(heights, line.Box.Height())
	}
	sort.Float64s(heights)

	mid := len(heights) / 2
	if len(heights)%2 == 0 {
		return (heights[mid-1] + heights[mid]) / 2
	}
	return heights[mid]
}

// verticalOverlapRatio is the shared vertical extent of two boxes
// relative to the shorter one.
func verticalOverlapRatio(a, b Rect) float64 {
	overlap := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
	if overlap <= 0 {
		return 0
	}
	smaller := math.Min(a.Height(), b.Height())
	if smaller <= 0 {
		return 0
	}
	return overlap / smaller
}
