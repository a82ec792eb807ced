package signdict

// PageReader is the document-access capability the engine consumes.
// The production implementation is backed by pdfium (see Reader); the
// geometry pipeline itself only ever sees PageContent, so tests drive
// it with synthetic pages.
type PageReader interface {
	// PageCount returns the number of pages in the document.
	PageCount() (int, error)

	// ReadPage extracts the raw content of the page at the given
	// 0-indexed position.
	ReadPage(index int) (*PageContent, error)

	// Close releases the underlying document handle.
	Close() error
}
