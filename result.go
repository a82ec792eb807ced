package signdict

import (
	"fmt"
	"sort"
)

// ExtractError is one recorded extraction failure. Nothing in the run
// aborts on these; they accumulate alongside the entries.
type ExtractError struct {
	Page    int    `json:"page"`
	Message string `json:"message"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Result accumulates the outcome of one extraction run. It is created
// per run and passed explicitly; there is no ambient state.
type Result struct {
	Entries []ParsedEntry  `json:"entries"`
	Errors  []ExtractError `json:"errors"`
}

// AddEntry records a successfully parsed entry.
func (r *Result) AddEntry(entry ParsedEntry) {
	r.Entries = append(r.Entries, entry)
}

// AddError records an extraction failure with a short text excerpt.
func (r *Result) AddError(page int, message, context string) {
	r.Errors = append(r.Errors, ExtractError{
		Page:    page,
		Message: message,
		Excerpt: excerpt(context),
	})
}

// Merge appends another run's entries and errors, preserving order.
func (r *Result) Merge(other *Result) {
	r.Entries = append(r.Entries, other.Entries...)
	r.Errors = append(r.Errors, other.Errors...)
}

// ValidationReport summarizes the quality of an extraction run.
type ValidationReport struct {
	TotalEntries               int      `json:"total_entries"`
	Successful                 int      `json:"successful"`
	Failed                     int      `json:"failed"`
	SuccessRate                string   `json:"success_rate"`
	EntriesWithoutImages       int      `json:"entries_without_images"`
	EntriesWithoutDefinition   int      `json:"entries_without_definition"`
	EntriesWithoutTranslations int      `json:"entries_without_translations"`
	DuplicateHeadwords         []string `json:"duplicate_headwords,omitempty"`
}

// Validate computes the validation report. Duplicate headword+variant
// pairs are warnings, not failures.
func (r *Result) Validate() ValidationReport {
	report := ValidationReport{
		TotalEntries: len(r.Entries) + len(r.Errors),
		Successful:   len(r.Entries),
		Failed:       len(r.Errors),
	}

	if report.TotalEntries > 0 {
		report.SuccessRate = fmt.Sprintf("%.1f%%",
			float64(report.Successful)/float64(report.TotalEntries)*100)
	} else {
		report.SuccessRate = "0%"
	}

	seen := make(map[string]int)
	for _, entry := range r.Entries {
		if len(entry.ImagePaths) == 0 && len(entry.Images) == 0 {
			report.EntriesWithoutImages++
		}
		if entry.Definition == "" {
			report.EntriesWithoutDefinition++
		}
		if len(entry.Translations) == 0 {
			report.EntriesWithoutTranslations++
		}
		seen[fmt.Sprintf("%s_v%d", entry.Headword, entry.VariantNumber)]++
	}

	for key, n := range seen {
		if n > 1 {
			report.DuplicateHeadwords = append(report.DuplicateHeadwords, key)
		}
	}
	sort.Strings(report.DuplicateHeadwords)

	return report
}
