package document

import (
	"errors"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// Sentinel errors for document access failures.
var (
	// ErrNotFound indicates the document path does not resolve.
	ErrNotFound = errors.New("document not found")
	// ErrCorrupt indicates the document exists but cannot be opened or parsed.
	ErrCorrupt = errors.New("document corrupt")
)

// Reader is the document-reading capability. The default implementation is
// MuPDF-backed; tests inject stubs.
type Reader interface {
	Open(path string) (Document, error)
}

// Document is an open certificate document. Pages are 0-indexed.
type Document interface {
	NumPages() int
	PageText(page int) (string, error)
	PageImages(page int) ([]model.ExtractedImage, error)
	Metadata() map[string]string
	Close() error
}
