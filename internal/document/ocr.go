package document

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TextRecognizer is the OCR capability, invoked only when primary text
// extraction yields too few characters (scanned certificates).
type TextRecognizer interface {
	Recognize(ctx context.Context, imageBytes []byte) (string, error)
}

// TesseractRecognizer implements TextRecognizer with a local tesseract engine
type TesseractRecognizer struct {
	languages []string
}

// NewTesseractRecognizer creates a tesseract-backed recognizer.
// With no languages given, tesseract's default (eng) applies.
func NewTesseractRecognizer(languages ...string) *TesseractRecognizer {
	return &TesseractRecognizer{languages: languages}
}

// Recognize runs OCR over the image bytes. The client is per-call: tesseract
// handles are not safe for concurrent reuse.
func (r *TesseractRecognizer) Recognize(ctx context.Context, imageBytes []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if len(r.languages) > 0 {
		if err := client.SetLanguage(r.languages...); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}

	if err := client.SetImageFromBytes(imageBytes); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	return text, nil
}
