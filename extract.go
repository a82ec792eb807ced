package signdict

import (
	"bytes"
	"sort"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/enums"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Reader is the pdfium-backed PageReader.
type Reader struct {
	instance pdfium.Pdfium
	doc      references.FPDF_DOCUMENT
	cfg      Config
	log      *zap.Logger
}

// OpenReader opens the PDF at path and returns a PageReader over it.
// The caller must Close the reader to release the document handle.
func OpenReader(instance pdfium.Pdfium, path string, cfg Config) (*Reader, error) {
	doc, err := instance.OpenDocument(&requests.OpenDocument{
		FilePath: &path,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open PDF document %s", path)
	}

	return &Reader{
		instance: instance,
		doc:      doc.Document,
		cfg:      cfg,
		log:      cfg.logger(),
	}, nil
}

// PageCount returns the number of pages in the document.
func (r *Reader) PageCount() (int, error) {
	resp, err := r.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: r.doc,
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get page count")
	}
	return resp.PageCount, nil
}

// Close releases the document handle.
func (r *Reader) Close() error {
	_, err := r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: r.doc,
	})
	return errors.Wrap(err, "failed to close document")
}

// ReadPage extracts images, text blocks and separator lines from the
// page at the given 0-indexed position.
func (r *Reader) ReadPage(index int) (*PageContent, error) {
	pageResp, err := r.instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: r.doc,
		Index:    index,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load page %d", index+1)
	}
	defer r.instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})

	widthResp, err := r.instance.FPDF_GetPageWidthF(&requests.FPDF_GetPageWidthF{
		Page: requests.Page{ByReference: &pageResp.Page},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page width")
	}
	heightResp, err := r.instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{ByReference: &pageResp.Page},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page height")
	}

	pageWidth := float64(widthResp.PageWidth)
	pageHeight := float64(heightResp.PageHeight)

	images, separators, err := r.extractObjects(pageResp.Page, index, pageHeight)
	if err != nil {
		return nil, err
	}

	textBlocks, err := r.extractTextBlocks(pageResp.Page, index, pageHeight)
	if err != nil {
		return nil, err
	}

	r.log.Debug("page extracted",
		zap.Int("page", index+1),
		zap.Int("images", len(images)),
		zap.Int("text_blocks", len(textBlocks)),
		zap.Int("separators", len(separators)))

	return &PageContent{
		Page:       index,
		Width:      pageWidth,
		Height:     pageHeight,
		Images:     images,
		TextBlocks: textBlocks,
		Separators: separators,
	}, nil
}

// extractObjects walks the page object list once, collecting placed
// raster images and separator-shaped path objects. Failures on a
// single object are logged and skipped.
func (r *Reader) extractObjects(page references.FPDF_PAGE, pageIndex int, pageHeight float64) ([]ImageBlock, []float64, error) {
	countResp, err := r.instance.FPDFPage_CountObjects(&requests.FPDFPage_CountObjects{
		Page: requests.Page{ByReference: &page},
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to count page objects")
	}

	var images []ImageBlock
	separatorSet := make(map[float64]struct{})

	for i := 0; i < countResp.Count; i++ {
		objResp, err := r.instance.FPDFPage_GetObject(&requests.FPDFPage_GetObject{
			Page:  requests.Page{ByReference: &page},
			Index: i,
		})
		if err != nil {
			continue
		}

		typeResp, err := r.instance.FPDFPageObj_GetType(&requests.FPDFPageObj_GetType{
			PageObject: objResp.PageObject,
		})
		if err != nil {
			continue
		}

		switch typeResp.Type {
		case enums.FPDF_PAGEOBJ_IMAGE:
			img, ok := r.extractImage(objResp.PageObject, i, pageIndex, pageHeight)
			if ok {
				images = append(images, img)
			}
		case enums.FPDF_PAGEOBJ_PATH:
			if y, ok := r.separatorY(objResp.PageObject, pageHeight); ok {
				separatorSet[y] = struct{}{}
			}
		}
	}

	separators := make([]float64, 0, len(separatorSet))
	for y := range separatorSet {
		separators = append(separators, y)
	}
	sort.Float64s(separators)

	return images, separators, nil
}

// extractImage resolves one image object's placement rectangle and
// decoded bytes. Returns false when the object has no usable placement
// or its data cannot be decoded.
func (r *Reader) extractImage(obj references.FPDF_PAGEOBJECT, objIndex, pageIndex int, pageHeight float64) (ImageBlock, bool) {
	boundsResp, err := r.instance.FPDFPageObj_GetBounds(&requests.FPDFPageObj_GetBounds{
		PageObject: obj,
	})
	if err != nil {
		r.log.Warn("no placement rectangle for image object",
			zap.Int("page", pageIndex+1), zap.Int("object", objIndex))
		return ImageBlock{}, false
	}

	// Convert PDF coordinates (origin bottom-left) to top-left origin.
	box := Rect{
		X0: float64(boundsResp.Left),
		Y0: pageHeight - float64(boundsResp.Top),
		X1: float64(boundsResp.Right),
		Y1: pageHeight - float64(boundsResp.Bottom),
	}

	dataResp, err := r.instance.FPDFImageObj_GetImageDataDecoded(&requests.FPDFImageObj_GetImageDataDecoded{
		ImageObject: obj,
	})
	if err != nil || len(dataResp.Data) == 0 {
		r.log.Warn("failed to decode image object",
			zap.Int("page", pageIndex+1), zap.Int("object", objIndex), zap.Error(err))
		return ImageBlock{}, false
	}

	return ImageBlock{
		ID:     objIndex,
		Box:    box,
		Data:   dataResp.Data,
		Format: r.imageFormat(obj, dataResp.Data),
		Page:   pageIndex,
	}, true
}

// imageFormat derives the output format tag from the object's filter
// chain, falling back to sniffing the decoded bytes.
func (r *Reader) imageFormat(obj references.FPDF_PAGEOBJECT, data []byte) string {
	countResp, err := r.instance.FPDFImageObj_GetImageFilterCount(&requests.FPDFImageObj_GetImageFilterCount{
		ImageObject: obj,
	})
	if err == nil {
		for i := 0; i < countResp.Count; i++ {
			filterResp, err := r.instance.FPDFImageObj_GetImageFilter(&requests.FPDFImageObj_GetImageFilter{
				ImageObject: obj,
				Index:       i,
			})
			if err != nil {
				continue
			}
			switch filterResp.ImageFilter {
			case "DCTDecode":
				return "jpg"
			case "JPXDecode":
				return "jp2"
			}
		}
	}
	return sniffImageFormat(data)
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
)

func sniffImageFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "jpg"
	case bytes.HasPrefix(data, pngMagic):
		return "png"
	default:
		return "png"
	}
}

// separatorY reports the mid-y of a path object shaped like an entry
// separator: a stroked horizontal line (2 segments, vertical extent
// within LineEpsilon) or a thin filled bar (4+ segments, vertical
// extent within BarEpsilon), in both cases wider than
// SeparatorMinLength.
func (r *Reader) separatorY(obj references.FPDF_PAGEOBJECT, pageHeight float64) (float64, bool) {
	boundsResp, err := r.instance.FPDFPageObj_GetBounds(&requests.FPDFPageObj_GetBounds{
		PageObject: obj,
	})
	if err != nil {
		return 0, false
	}

	y0 := pageHeight - float64(boundsResp.Top)
	y1 := pageHeight - float64(boundsResp.Bottom)
	width := float64(boundsResp.Right) - float64(boundsResp.Left)
	height := y1 - y0

	if width <= r.cfg.SeparatorMinLength {
		return 0, false
	}

	segResp, err := r.instance.FPDFPath_CountSegments(&requests.FPDFPath_CountSegments{
		PageObject: obj,
	})
	if err != nil || segResp.Count < 2 {
		return 0, false
	}

	switch {
	case segResp.Count == 2 && height <= r.cfg.LineEpsilon:
		return (y0 + y1) / 2, true
	case segResp.Count >= 4 && height <= r.cfg.BarEpsilon:
		return (y0 + y1) / 2, true
	default:
		return 0, false
	}
}
