package document

import (
	"bytes"
	"fmt"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// FitzReader opens PDF and image documents through MuPDF.
type FitzReader struct{}

// NewFitzReader creates a MuPDF-backed document reader
func NewFitzReader() *FitzReader {
	return &FitzReader{}
}

// Open opens the document at path. A missing path maps to ErrNotFound and an
// unparseable file to ErrCorrupt so callers can degrade per failure class.
func (r *FitzReader) Open(path string) (Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPages() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) PageText(page int) (string, error) {
	text, err := d.doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("page %d text: %w", page, err)
	}
	return text, nil
}

// PageImages returns the page's raster content as PNG bytes. MuPDF renders
// one raster per page; the page index is preserved for traceability.
func (d *fitzDocument) PageImages(page int) ([]model.ExtractedImage, error) {
	img, err := d.doc.Image(page)
	if err != nil {
		return nil, fmt.Errorf("page %d image: %w", page, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("page %d encode: %w", page, err)
	}

	return []model.ExtractedImage{
		{Page: page, Index: 0, Ext: "png", Data: buf.Bytes()},
	}, nil
}

func (d *fitzDocument) Metadata() map[string]string {
	return d.doc.Metadata()
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
