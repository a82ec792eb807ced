package export

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/senalab/signdict"
)

// Record is the NDJSON shape consumed by the vector-index upload:
// one self-contained object per entry, plus a pre-assembled search
// text covering the terms a user might sign or say.
type Record struct {
	Headword            string   `json:"headword"`
	VariantNumber       int      `json:"variant_number"`
	Definition          string   `json:"definition,omitempty"`
	GrammaticalCategory string   `json:"grammatical_category,omitempty"`
	VerbType            string   `json:"verb_type,omitempty"`
	PageNumber          int      `json:"page_number"`
	Translations        []string `json:"translations"`
	Synonyms            []string `json:"synonyms,omitempty"`
	Antonyms            []string `json:"antonyms,omitempty"`
	Images              []string `json:"images,omitempty"`
	SearchText          string   `json:"search_text"`
}

// WriteNDJSON streams the result's entries as newline-delimited JSON.
func WriteNDJSON(w io.Writer, result *signdict.Result) error {
	enc := json.NewEncoder(w)
	for _, entry := range result.Entries {
		if err := enc.Encode(recordFor(entry)); err != nil {
			return errors.Wrapf(err, "failed to encode entry %s", entry.Headword)
		}
	}
	return nil
}

// WriteNDJSONFile writes the NDJSON export to a file.
func WriteNDJSONFile(path string, result *signdict.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create export file %s", path)
	}
	if err := WriteNDJSON(f, result); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to flush export file")
}

func recordFor(entry signdict.ParsedEntry) Record {
	return Record{
		Headword:            entry.Headword,
		VariantNumber:       entry.VariantNumber,
		Definition:          entry.Definition,
		GrammaticalCategory: entry.GrammaticalCategory,
		VerbType:            entry.VerbType,
		PageNumber:          entry.PageNumber,
		Translations:        entry.Translations,
		Synonyms:            entry.Synonyms,
		Antonyms:            entry.Antonyms,
		Images:              entry.ImagePaths,
		SearchText:          searchText(entry),
	}
}

// searchText lowers and joins the terms that should retrieve this
// entry: the headword, its translations and its synonyms.
func searchText(entry signdict.ParsedEntry) string {
	terms := make([]string, 0, 1+len(entry.Translations)+len(entry.Synonyms))
	terms = append(terms, strings.ToLower(entry.Headword))
	for _, t := range entry.Translations {
		terms = append(terms, strings.ToLower(t))
	}
	for _, s := range entry.Synonyms {
		terms = append(terms, strings.ToLower(s))
	}
	return strings.Join(terms, " ")
}
