package signdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntry_FullyLabelledEntry(t *testing.T) {
	raw := "ABANDONAR v. tr. Esp.: abandonar, dejar Sin. desertar Ant. quedarse"

	entry, err := ParseEntry(raw, 12, "", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "ABANDONAR", entry.Headword)
	assert.Equal(t, 1, entry.VariantNumber)
	assert.Equal(t, "v. tr.", entry.GrammaticalCategory)
	assert.Empty(t, entry.Definition)
	assert.Equal(t, []string{"abandonar", "dejar"}, entry.Translations)
	assert.Equal(t, []string{"desertar"}, entry.Synonyms)
	assert.Equal(t, []string{"quedarse"}, entry.Antonyms)
	assert.Equal(t, 12, entry.PageNumber)
	assert.Equal(t, raw, entry.RawText)
}

func TestParseEntry_DefinitionAndEspLine(t *testing.T) {
	raw := "ABANICO\nInstrumento plegable para dar aire.\nEsp.: sust. abanico."

	entry, err := ParseEntry(raw, 3, "", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "ABANICO", entry.Headword)
	assert.Equal(t, "Instrumento plegable para dar aire.", entry.Definition)
	assert.Equal(t, "sust.", entry.GrammaticalCategory)
	assert.Equal(t, []string{"abanico"}, entry.Translations)
	assert.Empty(t, entry.Synonyms)
	assert.Empty(t, entry.Antonyms)
}

func TestParseEntry_VerbClassification(t *testing.T) {
	raw := "CAMINAR\nDesplazarse a pie. Verbo pleno\nEsp.: v. caminar, andar."

	entry, err := ParseEntry(raw, 7, "", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "Verbo pleno", entry.VerbType)
	assert.Equal(t, "Desplazarse a pie.", entry.Definition,
		"verb classification phrase must be stripped from the definition")
	assert.Equal(t, "v.", entry.GrammaticalCategory)
	assert.Equal(t, []string{"caminar", "andar"}, entry.Translations)
}

func TestParseEntry_VerbClassificationMultiWord(t *testing.T) {
	raw := "ENTREGAR\nPasar algo a otra persona. Verbo de concordancia\nEsp.: v. entregar."

	entry, err := ParseEntry(raw, 9, "", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "Verbo de concordancia", entry.VerbType)
	assert.Equal(t, "Pasar algo a otra persona.", entry.Definition)
}

func TestParseEntry_VariantNumberPrefix(t *testing.T) {
	raw := "2. ACUARIO\nSigno zodiacal.\nEsp.: acuario."

	entry, err := ParseEntry(raw, 15, "2. ACUARIO", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "ACUARIO", entry.Headword)
	assert.Equal(t, 2, entry.VariantNumber)
	assert.Equal(t, "Signo zodiacal.", entry.Definition)
}

func TestParseEntry_KnownHeadwordTakesPrecedence(t *testing.T) {
	raw := "ABEJA insecto que produce miel.\nEsp.: abeja."

	entry, err := ParseEntry(raw, 1, "ABEJA", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "ABEJA", entry.Headword)
}

func TestParseEntry_SynthesizedTranslations(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		headword string
		want     string
	}{
		{
			name:     "hyphen becomes space",
			raw:      "ABRIR-CAJÓN\nAcción de abrir un cajón.",
			headword: "ABRIR-CAJÓN",
			want:     "Abrir Cajón",
		},
		{
			name:     "slash becomes disjunction",
			raw:      "SÍ/NO\nRespuesta afirmativa o negativa.",
			headword: "SÍ/NO",
			want:     "Sí O No",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ParseEntry(tt.raw, 1, tt.headword, DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, entry.Translations,
				"an entry without an Esp.: line falls back to a gloss built from the headword")
		})
	}
}

func TestParseEntry_SynonymLabelVariants(t *testing.T) {
	raw := "ALEGRE\nQue siente alegría.\nEsp.: adj. alegre, contento Sinón. feliz, dichoso"

	entry, err := ParseEntry(raw, 4, "", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"alegre", "contento"}, entry.Translations)
	assert.Equal(t, []string{"feliz", "dichoso"}, entry.Synonyms)
}

func TestParseEntry_CategoryAbbreviations(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		category     string
		translations []string
	}{
		{
			name:         "interrogative",
			raw:          "CUÁNDO\nPregunta por el momento.\nEsp.: int. cuándo.",
			category:     "int.",
			translations: []string{"cuándo"},
		},
		{
			name:         "proper noun",
			raw:          "MARÍA\nNombre de mujer.\nEsp.: p. María.",
			category:     "p.",
			translations: []string{"María"},
		},
		{
			name:         "interjection",
			raw:          "HOLA\nSaludo.\nEsp.: interj. hola.",
			category:     "interj.",
			translations: []string{"hola"},
		},
		{
			name:         "intransitive verb run",
			raw:          "DORMIR\nEstar en reposo.\nEsp.: v. intr. dormir.",
			category:     "v. intr.",
			translations: []string{"dormir"},
		},
		{
			name:         "lone translation is not a category",
			raw:          "ABANICO\nInstrumento.\nEsp.: abanico.",
			category:     "",
			translations: []string{"abanico"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ParseEntry(tt.raw, 1, "", DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.category, entry.GrammaticalCategory)
			assert.Equal(t, tt.translations, entry.Translations)
		})
	}
}

func TestParseEntry_TranslationRunStopsAtSentence(t *testing.T) {
	raw := "AGUA\nLíquido transparente.\nEsp.: sust. agua. Se usa también para lluvia."

	entry, err := ParseEntry(raw, 2, "", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"agua"}, entry.Translations,
		"prose after the translation run must not leak into translations")
}

func TestParseEntry_TruncatedEspLine(t *testing.T) {
	raw := "ABRIR\nSeparar puertas o tapas.\nEsp.: v. tr."

	entry, err := ParseEntry(raw, 5, "", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "v. tr.", entry.GrammaticalCategory)
	assert.Equal(t, []string{"Abrir"}, entry.Translations,
		"a category-only Esp.: line still yields a synthesized translation")
}

func TestParseEntry_Errors(t *testing.T) {
	cfg := DefaultConfig()

	_, err := ParseEntry("   \n  ", 1, "", cfg)
	assert.Error(t, err)

	_, err = ParseEntry("texto sin encabezado alguno", 1, "", cfg)
	assert.ErrorIs(t, err, ErrNoHeadword)
}

// Every successful parse carries a headword, a variant number of at
// least 1 and a non-empty translation list.
func TestParseEntry_Guarantees(t *testing.T) {
	cfg := DefaultConfig()
	raws := []string{
		"ABANDONAR v. tr. Esp.: abandonar, dejar Sin. desertar Ant. quedarse",
		"ABANICO\nInstrumento.\nEsp.: abanico.",
		"ÁRBOL\nPlanta de tronco leñoso.",
		"BUENOS-DÍAS\nSaludo matinal.",
	}

	for _, raw := range raws {
		entry, err := ParseEntry(raw, 1, "", cfg)
		require.NoError(t, err, raw)
		assert.NotEmpty(t, entry.Headword)
		assert.GreaterOrEqual(t, entry.VariantNumber, 1)
		assert.NotEmpty(t, entry.Translations)
	}
}

func TestExtractVariantNumber(t *testing.T) {
	tests := []struct {
		in       string
		variant  int
		headword string
	}{
		{"ACUARIO", 1, "ACUARIO"},
		{"2. ACUARIO", 2, "ACUARIO"},
		{"10. CASA", 10, "CASA"},
		{"0. CASA", 1, "0. CASA"},
	}

	for _, tt := range tests {
		variant, headword := extractVariantNumber(tt.in)
		assert.Equal(t, tt.variant, variant, tt.in)
		assert.Equal(t, tt.headword, headword, tt.in)
	}
}

func TestSplitLeadingCategory(t *testing.T) {
	category, rest := splitLeadingCategory("v. tr. Dejar algo o a alguien.")
	assert.Equal(t, "v. tr.", category)
	assert.Equal(t, "Dejar algo o a alguien.", rest)

	category, rest = splitLeadingCategory("Dejar algo.")
	assert.Empty(t, category)
	assert.Equal(t, "Dejar algo.", rest)
}
