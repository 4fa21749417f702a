package document

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PDFBytesToText converts an in-memory PDF payload to concatenated page text.
// Used for linked documents downloaded during web evidence collection, which
// never touch disk.
func PDFBytesToText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer func() { _ = doc.Close() }()

	var builder strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("page %d text: %w", page, err)
		}
		builder.WriteString(text)
	}

	return builder.String(), nil
}
