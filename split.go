package signdict

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// headwordPattern matches an upper-case token (accented vowels, Ñ/Ü,
// hyphen and slash allowed) at text start or right after a line break,
// itself followed by a line break or a space.
var headwordPattern = regexp.MustCompile(`(?m)^([A-ZÁÉÍÓÚÑÜ][A-ZÁÉÍÓÚÑÜ/-]+)(?:\n| )`)

// headwordLinePattern matches a line that consists of a headword only.
var headwordLinePattern = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑÜ][A-ZÁÉÍÓÚÑÜ/-]+$`)

// trailingPageNumber matches a bare page-number line at the end of an
// entry span.
var trailingPageNumber = regexp.MustCompile(`\n\d{1,3}\s*$`)

type headwordMatch struct {
	word  string
	start int
	end   int
}

// findHeadwords locates every non-excluded headword candidate in the
// text, in appearance order.
func findHeadwords(text string, cfg Config) []headwordMatch {
	var found []headwordMatch

	for _, m := range headwordPattern.FindAllStringSubmatchIndex(text, -1) {
		word := strings.TrimSpace(text[m[2]:m[3]])
		if cfg.excluded(word) || isAllDigits(word) {
			continue
		}
		found = append(found, headwordMatch{word: word, start: m[2], end: m[3]})
	}

	return found
}

// SplitByHeadwords splits a region's concatenated text into entries at
// headword boundaries. Each entry spans from its headword to the next
// headword (or end of text), with trailing bare page-number lines
// stripped. The split is purely typographic; no field structure is
// assumed. An empty result means no headwords were found and the
// caller should record a page-level error.
func SplitByHeadwords(text string, cfg Config) []SplitEntry {
	headwords := findHeadwords(text, cfg)
	if len(headwords) == 0 {
		cfg.logger().Warn("no headwords found in text",
			zap.String("excerpt", excerpt(text)))
		return nil
	}

	entries := make([]SplitEntry, 0, len(headwords))
	for i, hw := range headwords {
		end := len(text)
		if i < len(headwords)-1 {
			end = headwords[i+1].start
		}

		entryText := strings.TrimSpace(text[hw.start:end])
		entryText = trailingPageNumber.ReplaceAllString(entryText, "")

		entries = append(entries, SplitEntry{
			Headword: hw.word,
			Text:     entryText,
			StartPos: hw.start,
			EndPos:   hw.start + len(entryText),
		})
	}

	return entries
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// excerpt shortens a text to a loggable prefix.
func excerpt(text string) string {
	const max = 100
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
