package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// Extractor pulls raw text and embedded raster images out of a certificate
// document. Failures never propagate: the caller always receives a valid
// (possibly empty) evidence document plus a log explaining every gap.
type Extractor struct {
	reader      Reader
	recognizer  TextRecognizer // optional OCR fallback, may be nil
	ocrMinChars int
}

// NewExtractor creates a document extractor. recognizer may be nil to
// disable the OCR fallback.
func NewExtractor(reader Reader, recognizer TextRecognizer, ocrMinChars int) *Extractor {
	if ocrMinChars <= 0 {
		ocrMinChars = 20
	}
	return &Extractor{
		reader:      reader,
		recognizer:  recognizer,
		ocrMinChars: ocrMinChars,
	}
}

// Extract reads every page of the document in order, concatenating text and
// collecting embedded images tagged with their page index. Intermediate image
// files are written to a scoped temporary area that is removed before return,
// success or failure; downstream consumers only ever see in-memory bytes.
func (e *Extractor) Extract(ctx context.Context, path string) (*model.EvidenceDocument, []string) {
	var log []string

	empty := &model.EvidenceDocument{
		SourceID: path,
		Kind:     model.KindPrimaryDocument,
		Metadata: map[string]string{},
	}

	doc, err := e.reader.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			log = append(log, fmt.Sprintf("Error: document not found: %s", path))
		case errors.Is(err, ErrCorrupt):
			log = append(log, fmt.Sprintf("Error: document cannot be parsed: %v", err))
		default:
			log = append(log, fmt.Sprintf("Error: open document: %v", err))
		}
		return empty, log
	}
	defer func() { _ = doc.Close() }()

	tempDir, err := os.MkdirTemp("", "certverify-extract-")
	if err != nil {
		log = append(log, fmt.Sprintf("Warning: no temp area available: %v", err))
	} else {
		defer func() { _ = os.RemoveAll(tempDir) }()
	}

	var textBuilder strings.Builder
	var images []model.ExtractedImage

	for page := 0; page < doc.NumPages(); page++ {
		if err := ctx.Err(); err != nil {
			log = append(log, fmt.Sprintf("Warning: extraction interrupted at page %d: %v", page, err))
			break
		}

		pageText, err := doc.PageText(page)
		if err != nil {
			log = append(log, fmt.Sprintf("Warning: page %d text extraction failed: %v", page, err))
		} else {
			textBuilder.WriteString(pageText)
		}

		pageImages, err := doc.PageImages(page)
		if err != nil {
			log = append(log, fmt.Sprintf("Warning: page %d image extraction failed: %v", page, err))
			continue
		}
		for _, img := range pageImages {
			if tempDir != "" {
				name := fmt.Sprintf("img_p%d_i%d.%s", img.Page, img.Index, img.Ext)
				if werr := os.WriteFile(filepath.Join(tempDir, name), img.Data, 0o600); werr != nil {
					log = append(log, fmt.Sprintf("Warning: stage image %s: %v", name, werr))
				}
			}
			images = append(images, img)
		}
	}

	text := textBuilder.String()
	if len(strings.TrimSpace(text)) < e.ocrMinChars {
		log = append(log, "Low text extracted from document, switching to OCR on images.")
		if ocrText, ok := e.ocrFallback(ctx, images, &log); ok {
			text = ocrText
		}
	} else {
		log = append(log, fmt.Sprintf("Extracted %d characters from document text.", len(text)))
	}

	metadata := doc.Metadata()
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &model.EvidenceDocument{
		SourceID: path,
		Kind:     model.KindPrimaryDocument,
		Text:     text,
		Images:   images,
		Metadata: metadata,
	}, log
}

// ocrFallback runs the recognizer over each extracted image in order and
// concatenates the results.
func (e *Extractor) ocrFallback(ctx context.Context, images []model.ExtractedImage, log *[]string) (string, bool) {
	if e.recognizer == nil {
		*log = append(*log, "Warning: no text recognizer configured; keeping extracted text as-is.")
		return "", false
	}
	if len(images) == 0 {
		*log = append(*log, "Warning: no images available for OCR fallback.")
		return "", false
	}

	var builder strings.Builder
	recognized := 0
	for _, img := range images {
		text, err := e.recognizer.Recognize(ctx, img.Data)
		if err != nil {
			*log = append(*log, fmt.Sprintf("Warning: OCR failed on page %d image %d: %v", img.Page, img.Index, err))
			continue
		}
		builder.WriteString(text)
		builder.WriteString(" ")
		recognized++
	}

	if recognized == 0 {
		return "", false
	}

	text := builder.String()
	*log = append(*log, fmt.Sprintf("Extracted %d characters from OCR on %d images.", len(text), recognized))
	return text, true
}
