// Package export writes extraction results out of process: sign
// images under a deterministic directory layout, and entries as
// NDJSON for vector-index upload.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/senalab/signdict"
)

// accentFold flattens the Spanish accented vowels and ñ/ü to ASCII.
var accentFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ñ", "n", "ü", "u",
)

var nonFilenameChars = regexp.MustCompile(`[^a-z0-9_]`)

// NormalizeHeadword turns a headword into a filename-safe slug:
// lowercase, hyphen and slash to underscore, accents folded to ASCII,
// everything else outside [a-z0-9_] removed. Idempotent.
//
//	"ABRIR-CAJÓN" -> "abrir_cajon"
//	"BUENOS-DÍAS" -> "buenos_dias"
func NormalizeHeadword(headword string) string {
	s := strings.ToLower(headword)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = accentFold.Replace(s)
	return nonFilenameChars.ReplaceAllString(s, "")
}

// ImageFilename builds the file name for one image of an entry's
// movement sequence. The variant suffix appears only beyond variant 1.
//
//	ImageFilename("ABANICO", 1, 0, "jpg")  -> "abanico_0.jpg"
//	ImageFilename("ACUARIO", 2, 0, "jpg")  -> "acuario_v2_0.jpg"
func ImageFilename(headword string, variant, sequence int, ext string) string {
	normalized := NormalizeHeadword(headword)
	ext = strings.TrimPrefix(ext, ".")

	if variant > 1 {
		return fmt.Sprintf("%s_v%d_%d.%s", normalized, variant, sequence, ext)
	}
	return fmt.Sprintf("%s_%d.%s", normalized, sequence, ext)
}

// ImagePath prefixes the filename with the headword's first letter,
// so the output tree groups alphabetically (A/, B/, ...).
func ImagePath(headword string, variant, sequence int, ext string) string {
	first := "OTHER"
	if headword != "" {
		first = strings.ToUpper(string([]rune(headword)[0]))
	}
	return filepath.Join(first, ImageFilename(headword, variant, sequence, ext))
}

// ImageWriter persists attributed images under a base directory. It
// implements signdict.ImageSaver.
type ImageWriter struct {
	baseDir string
	log     *zap.Logger
}

// NewImageWriter creates the base directory and returns a writer.
func NewImageWriter(baseDir string, log *zap.Logger) (*ImageWriter, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create image directory %s", baseDir)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageWriter{baseDir: baseDir, log: log}, nil
}

// SaveEntryImages writes one entry's images in movement order (sorted
// by ascending vertical position) and returns their relative paths.
// A failed file is logged and skipped; the sequence keeps counting.
func (w *ImageWriter) SaveEntryImages(headword string, variant int, images []signdict.ImageBlock) ([]string, error) {
	ordered := make([]signdict.ImageBlock, len(images))
	copy(ordered, images)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].YPosition() < ordered[j].YPosition()
	})

	paths := make([]string, 0, len(ordered))
	for sequence, img := range ordered {
		rel := ImagePath(headword, variant, sequence, img.Format)
		full := filepath.Join(w.baseDir, rel)

		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return paths, errors.Wrapf(err, "failed to create directory for %s", rel)
		}
		if err := os.WriteFile(full, img.Data, 0o644); err != nil {
			w.log.Error("failed to write image",
				zap.String("path", rel), zap.Error(err))
			continue
		}
		paths = append(paths, rel)
	}

	w.log.Debug("saved entry images",
		zap.String("headword", headword),
		zap.Int("variant", variant),
		zap.Int("count", len(paths)))

	return paths, nil
}
