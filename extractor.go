package signdict

import (
	"github.com/klippa-app/go-pdfium"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ImageSaver persists one entry's attributed images and returns their
// relative paths in movement order. Implemented by export.ImageWriter.
type ImageSaver interface {
	SaveEntryImages(headword string, variant int, images []ImageBlock) ([]string, error)
}

// Extractor runs the full per-page pipeline over a document:
// layout extraction, page segmentation, entry splitting, image
// attribution and field parsing.
type Extractor struct {
	instance pdfium.Pdfium
	cfg      Config
	saver    ImageSaver
	log      *zap.Logger
}

// NewExtractor creates an extractor with the default configuration.
func NewExtractor(instance pdfium.Pdfium) *Extractor {
	return NewExtractorWithConfig(instance, DefaultConfig())
}

// NewExtractorWithConfig creates an extractor with a custom configuration.
func NewExtractorWithConfig(instance pdfium.Pdfium, cfg Config) *Extractor {
	return &Extractor{
		instance: instance,
		cfg:      cfg,
		log:      cfg.logger(),
	}
}

// SetImageSaver installs the image persistence hook. Without one,
// entries keep their raster blocks in memory and no paths are set.
func (e *Extractor) SetImageSaver(saver ImageSaver) {
	e.saver = saver
}

// ProcessFile extracts all entries from the PDF at path, processing
// pages startPage through endPage (0-indexed; negative values mean
// first/last). Page-level failures are recorded in the result; only
// an unopenable document fails the call.
func (e *Extractor) ProcessFile(path string, startPage, endPage int) (*Result, error) {
	reader, err := OpenReader(e.instance, path, e.cfg)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return e.process(reader, startPage, endPage)
}

// Process runs the pipeline over an already-open PageReader. Useful
// for tests and for alternative document backends.
func (e *Extractor) Process(reader PageReader, startPage, endPage int) (*Result, error) {
	return e.process(reader, startPage, endPage)
}

func (e *Extractor) process(reader PageReader, startPage, endPage int) (*Result, error) {
	pageCount, err := reader.PageCount()
	if err != nil {
		return nil, err
	}

	if startPage < 0 {
		startPage = 0
	}
	if endPage < 0 || endPage >= pageCount {
		endPage = pageCount - 1
	}
	if startPage > endPage {
		return nil, errors.New("invalid page range: start page must be <= end page")
	}

	result := &Result{}

	for i := startPage; i <= endPage; i++ {
		content, err := reader.ReadPage(i)
		if err != nil {
			// Page-fatal: record and move on, the run survives.
			e.log.Error("failed to read page", zap.Int("page", i+1), zap.Error(err))
			result.AddError(i+1, "failed to read page: "+err.Error(), "")
			continue
		}
		e.processPage(content, result)
	}

	return result, nil
}

// processPage turns one page's raw content into parsed entries.
func (e *Extractor) processPage(content *PageContent, result *Result) {
	pageNumber := content.Page + 1

	for _, region := range SegmentPage(content, e.cfg) {
		fullText := region.FullText()

		entries := SplitByHeadwords(fullText, e.cfg)
		if len(entries) == 0 {
			result.AddError(pageNumber, "no headwords found in text", fullText)
			continue
		}

		strategy := ChooseStrategy(region, entries, e.cfg)
		imageLists := strategy.Distribute(entries, region.Images)

		e.log.Debug("region processed",
			zap.Int("page", pageNumber),
			zap.Int("entries", len(entries)),
			zap.Int("images", len(region.Images)),
			zap.String("strategy", strategy.Name()))

		for i, split := range entries {
			parsed, err := ParseEntry(split.Text, pageNumber, split.Headword, e.cfg)
			if err != nil {
				e.log.Warn("failed to parse entry",
					zap.Int("page", pageNumber),
					zap.String("headword", split.Headword),
					zap.Error(err))
				result.AddError(pageNumber, "failed to parse "+split.Headword, split.Text)
				continue
			}

			parsed.Images = imageLists[i]
			if len(parsed.Images) == 0 {
				e.log.Warn("entry has no images",
					zap.Int("page", pageNumber),
					zap.String("headword", parsed.Headword))
			} else if e.saver != nil {
				paths, err := e.saver.SaveEntryImages(parsed.Headword, parsed.VariantNumber, parsed.Images)
				if err != nil {
					e.log.Error("failed to save entry images",
						zap.String("headword", parsed.Headword),
						zap.Error(err))
				}
				parsed.ImagePaths = paths
			}

			result.AddEntry(*parsed)
		}
	}
}
