package model

// EvidenceDocument is one unit of extracted text/metadata from a single source:
// the uploaded certificate, the verification web page, or a PDF linked from it.
// Instances are immutable once produced and live only for one verification request.
type EvidenceDocument struct {
	SourceID string            `json:"source_id"`          // File path or URL
	Kind     EvidenceKind      `json:"kind"`               // primary_document, web_page, linked_pdf
	Text     string            `json:"text"`               // Concatenated page/markup text (may be empty)
	Images   []ExtractedImage  `json:"images,omitempty"`   // Embedded raster images, page order
	Metadata map[string]string `json:"metadata,omitempty"` // Document metadata (title, creationDate, ...)
}

// ExtractedImage is an embedded raster image pulled from the primary document,
// tagged with its originating page for traceability.
type ExtractedImage struct {
	Page  int    `json:"page"`  // 0-based page index
	Index int    `json:"index"` // Position of the image on its page
	Ext   string `json:"ext"`   // Image format extension (png, jpeg, ...)
	Data  []byte `json:"-"`     // Raw image bytes, kept in memory only
}

// EvidenceKind classifies where an evidence document came from
type EvidenceKind string

const (
	KindPrimaryDocument EvidenceKind = "primary_document" // The uploaded certificate itself
	KindWebPage         EvidenceKind = "web_page"         // The reference verification page
	KindLinkedPDF       EvidenceKind = "linked_pdf"       // A PDF discovered on the reference page
)

func (k EvidenceKind) String() string {
	return string(k)
}

// HasText reports whether the document carries any usable text.
// An empty-text document is still valid; scorers must handle it.
func (d *EvidenceDocument) HasText() bool {
	return d != nil && d.Text != ""
}

// ImageCount returns the number of extracted images.
func (d *EvidenceDocument) ImageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Images)
}
