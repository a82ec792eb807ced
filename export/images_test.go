package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senalab/signdict"
)

func TestNormalizeHeadword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ABANICO", "abanico"},
		{"ABRIR-CAJÓN", "abrir_cajon"},
		{"BUENOS-DÍAS", "buenos_dias"},
		{"SÍ/NO", "si_no"},
		{"AÑO", "ano"},
		{"PINGÜINO", "pinguino"},
		{"¿QUÉ?", "que"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeHeadword(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeHeadword(got), "normalization must be idempotent")
		})
	}
}

func TestImageFilename(t *testing.T) {
	assert.Equal(t, "abanico_0.jpg", ImageFilename("ABANICO", 1, 0, "jpg"))
	assert.Equal(t, "abanico_2.jpg", ImageFilename("ABANICO", 1, 2, "jpg"))
	assert.Equal(t, "acuario_v2_0.jpg", ImageFilename("ACUARIO", 2, 0, "jpg"))
	assert.Equal(t, "casa_0.png", ImageFilename("CASA", 1, 0, ".png"))
}

func TestImagePath(t *testing.T) {
	assert.Equal(t, filepath.Join("A", "abanico_0.jpg"), ImagePath("ABANICO", 1, 0, "jpg"))
	assert.Equal(t, filepath.Join("Á", "arbol_0.jpg"), ImagePath("ÁRBOL", 1, 0, "jpg"))
	assert.Equal(t, filepath.Join("OTHER", "_0.jpg"), ImagePath("", 1, 0, "jpg"))
}

func TestImageWriter_SavesInMovementOrder(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewImageWriter(dir, nil)
	require.NoError(t, err)

	// Given out of order; the sequence must follow vertical position.
	images := []signdict.ImageBlock{
		{Box: signdict.Rect{Y0: 300}, Data: []byte("lower"), Format: "jpg"},
		{Box: signdict.Rect{Y0: 100}, Data: []byte("upper"), Format: "jpg"},
	}

	paths, err := writer.SaveEntryImages("ABANICO", 1, images)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join("A", "abanico_0.jpg"),
		filepath.Join("A", "abanico_1.jpg"),
	}, paths)

	data, err := os.ReadFile(filepath.Join(dir, paths[0]))
	require.NoError(t, err)
	assert.Equal(t, "upper", string(data), "sequence 0 is the topmost image")
}

func TestImageWriter_VariantSuffix(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewImageWriter(dir, nil)
	require.NoError(t, err)

	paths, err := writer.SaveEntryImages("ACUARIO", 2, []signdict.ImageBlock{
		{Box: signdict.Rect{Y0: 100}, Data: []byte("x"), Format: "jpg"},
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join("A", "acuario_v2_0.jpg"), paths[0])

	_, err = os.Stat(filepath.Join(dir, paths[0]))
	assert.NoError(t, err)
}

func TestImageWriter_NoImages(t *testing.T) {
	writer, err := NewImageWriter(t.TempDir(), nil)
	require.NoError(t, err)

	paths, err := writer.SaveEntryImages("ABANICO", 1, nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
