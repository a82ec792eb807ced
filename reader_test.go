package signdict_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senalab/signdict"
)

// setupPDFium initialises a pdfium instance for testing.
func setupPDFium(t *testing.T) pdfium.Pdfium {
	t.Helper()

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	instance, err := pool.GetInstance(time.Second * 30)
	require.NoError(t, err)

	return instance
}

// dictionaryPDF returns the sample dictionary scan, skipping the test
// when it is not checked out.
func dictionaryPDF(t *testing.T) string {
	t.Helper()

	path := filepath.Join("testdata", "diccionario_sample.pdf")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("sample dictionary PDF not found, skipping test")
	}
	return path
}

func TestReader_ReadPage(t *testing.T) {
	instance := setupPDFium(t)
	path := dictionaryPDF(t)

	reader, err := signdict.OpenReader(instance, path, signdict.DefaultConfig())
	require.NoError(t, err)
	defer reader.Close()

	count, err := reader.PageCount()
	require.NoError(t, err)
	require.Greater(t, count, 0)

	content, err := reader.ReadPage(0)
	require.NoError(t, err)

	assert.Equal(t, 0, content.Page)
	assert.Greater(t, content.Width, 0.0)
	assert.Greater(t, content.Height, 0.0)
	assert.NotEmpty(t, content.TextBlocks)

	for _, img := range content.Images {
		assert.NotEmpty(t, img.Data)
		assert.NotEmpty(t, img.Format)
		assert.GreaterOrEqual(t, img.Box.Y0, 0.0,
			"image boxes are in top-left origin coordinates")
	}

	for i := 1; i < len(content.Separators); i++ {
		assert.Less(t, content.Separators[i-1], content.Separators[i],
			"separator positions are sorted and unique")
	}
}

func TestOpenReader_MissingFile(t *testing.T) {
	instance := setupPDFium(t)

	_, err := signdict.OpenReader(instance, filepath.Join("testdata", "no_such.pdf"), signdict.DefaultConfig())
	assert.Error(t, err)
}

func TestExtractor_ProcessFile(t *testing.T) {
	instance := setupPDFium(t)
	path := dictionaryPDF(t)

	extractor := signdict.NewExtractor(instance)
	result, err := extractor.ProcessFile(path, -1, -1)
	require.NoError(t, err)

	report := result.Validate()
	t.Logf("extracted %d entries (%s success rate)", report.Successful, report.SuccessRate)

	for _, entry := range result.Entries {
		assert.NotEmpty(t, entry.Headword)
		assert.GreaterOrEqual(t, entry.VariantNumber, 1)
		assert.NotEmpty(t, entry.Translations)
	}
}
