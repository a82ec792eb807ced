package signdict

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// verbTypePattern matches the verb classification phrase.
	verbTypePattern = regexp.MustCompile(`(?i)Verbo\s+(pleno|de\s+concordancia|espacial\s+locativo)`)

	// espLinePattern captures the translation line up to the first
	// relation label.
	espLinePattern = regexp.MustCompile(`(?s)Esp\.:\s*(.+?)(?:\s+Sin\.|\s+Sinón\.|\s+Ant\.|$)`)

	// categoryPattern matches a leading run of grammatical abbreviation
	// tokens, e.g. "v. tr." or "sust. m.". The token set is closed so a
	// lone translation with a trailing period ("abanico.") is never
	// mistaken for a category.
	categoryPattern = regexp.MustCompile(`^((?:(?:interj|intr|int|impers|exclam|excl|sust|prnl|pron|prep|conj|adj|adv|loc|fig|fam|pl|tr|v|s|m|f|p|u|t|c)\.\s*)+)`)

	// translationStop cuts the translation run at a sentence boundary
	// or a relation label.
	translationStop = regexp.MustCompile(`\.\s+[A-Z]|Sinón\.|Sin\.|Ant\.`)

	synonymPattern = regexp.MustCompile(`(?s)(?:Sin\.|Sinón\.)\s+([^.]+?)(?:\s+Ant\.|$)`)
	antonymPattern = regexp.MustCompile(`(?s)Ant\.\s+([^.]+?)\.?\s*$`)

	variantPrefix = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)
	commaSplit    = regexp.MustCompile(`,\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// ErrNoHeadword is returned when an entry's text contains no
// resolvable headword. The entry is dropped and the failure recorded.
var ErrNoHeadword = errors.New("no headword found in entry text")

// ParseEntry extracts the structured fields of one dictionary entry
// from its raw text. knownHeadword, when non-empty, takes precedence
// over re-detection. On success the entry always carries a headword,
// a variant number >= 1 and at least one translation.
func ParseEntry(rawText string, pageNumber int, knownHeadword string, cfg Config) (*ParsedEntry, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, errors.Errorf("empty entry text on page %d", pageNumber)
	}

	headword := knownHeadword
	if headword == "" {
		headword = extractHeadword(rawText, cfg)
		if headword == "" {
			return nil, ErrNoHeadword
		}
	}

	variant, headword := extractVariantNumber(headword)
	verbType := extractVerbType(rawText)
	definition := extractDefinition(rawText, headword)
	category, translations := parseEspLine(rawText)

	// Some layouts print the category right after the headword instead
	// of on the Esp.: line.
	if category == "" {
		category, definition = splitLeadingCategory(definition)
	}

	// The headword itself is always a usable translation of last resort.
	if len(translations) == 0 {
		translations = []string{synthesizeTranslation(headword)}
	}

	return &ParsedEntry{
		Headword:            headword,
		Definition:          definition,
		GrammaticalCategory: category,
		VerbType:            verbType,
		VariantNumber:       variant,
		PageNumber:          pageNumber,
		Translations:        translations,
		Synonyms:            extractRelations(rawText, synonymPattern),
		Antonyms:            extractRelations(rawText, antonymPattern),
		RawText:             rawText,
	}, nil
}

// extractHeadword finds the entry's headword: the first line when it
// is a lone upper-case token, otherwise the first non-excluded
// candidate anywhere in the text.
func extractHeadword(text string, cfg Config) string {
	firstLine := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if headwordLinePattern.MatchString(firstLine) && !cfg.excluded(firstLine) {
		return firstLine
	}

	for _, hw := range findHeadwords(text, cfg) {
		return hw.word
	}
	return ""
}

// extractVariantNumber strips a numeric "N. " prefix, e.g.
// "2. ACUARIO" -> (2, "ACUARIO"). Defaults to variant 1.
func extractVariantNumber(headword string) (int, string) {
	m := variantPrefix.FindStringSubmatch(headword)
	if m == nil {
		return 1, headword
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1, headword
	}
	return n, m[2]
}

func extractVerbType(text string) string {
	m := verbTypePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return "Verbo " + m[1]
}

// extractDefinition takes the text between the headword and the
// "Esp.:" label (or to end of text when the label is absent), with the
// verb classification phrase and excess whitespace stripped.
func extractDefinition(text, headword string) string {
	pos := strings.Index(text, headword)
	if pos == -1 {
		return ""
	}

	start := pos + len(headword)
	definition := text[start:]
	if espPos := strings.Index(text, "Esp.:"); espPos != -1 {
		if espPos < start {
			espPos = start
		}
		definition = text[start:espPos]
	}

	definition = verbTypePattern.ReplaceAllString(definition, "")
	definition = whitespaceRun.ReplaceAllString(definition, " ")
	return strings.TrimSpace(definition)
}

// parseEspLine pulls the grammatical category and the translation list
// out of the "Esp.:" line. A truncated line with no recoverable
// translations still yields the category.
func parseEspLine(text string) (string, []string) {
	m := espLinePattern.FindStringSubmatch(text)
	if m == nil {
		// The line may have been cut off mid-label; salvage the
		// category at least.
		espPos := strings.Index(text, "Esp.:")
		if espPos == -1 {
			return "", nil
		}
		remaining := strings.TrimSpace(text[espPos+len("Esp.:"):])
		if cm := categoryPattern.FindStringSubmatch(remaining); cm != nil {
			return strings.TrimSpace(cm[1]), nil
		}
		return "", nil
	}

	espLine := strings.TrimSpace(m[1])

	var category string
	if cm := categoryPattern.FindStringSubmatch(espLine); cm != nil {
		category = strings.TrimSpace(cm[1])
		espLine = strings.TrimSpace(espLine[len(cm[1]):])
	}

	translationsText := translationStop.Split(espLine, 2)[0]

	var translations []string
	for _, t := range commaSplit.Split(translationsText, -1) {
		t = strings.TrimRight(strings.TrimSpace(t), ".")
		if t != "" {
			translations = append(translations, t)
		}
	}

	return category, translations
}

// splitLeadingCategory peels a grammatical abbreviation run off the
// front of the definition, e.g. "v. tr. Dejar algo" -> ("v. tr.",
// "Dejar algo").
func splitLeadingCategory(definition string) (string, string) {
	m := categoryPattern.FindStringSubmatch(definition)
	if m == nil {
		return "", definition
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(definition[len(m[1]):])
}

// synthesizeTranslation derives a target-language gloss from the
// headword: hyphens become spaces, a slash becomes " o ", and the
// result is title-cased with Spanish rules.
func synthesizeTranslation(headword string) string {
	s := strings.ReplaceAll(headword, "-", " ")
	s = strings.ReplaceAll(s, "/", " o ")
	return cases.Title(language.Spanish).String(s)
}

func extractRelations(text string, pattern *regexp.Regexp) []string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var words []string
	for _, w := range commaSplit.Split(strings.TrimSpace(m[1]), -1) {
		w = strings.TrimRight(strings.TrimSpace(w), ".")
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
