package llm

import (
	"fmt"
	"strings"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// NewStructuredExtractor creates an extractor from configuration.
// An empty provider disables structured extraction and returns (nil, nil).
func NewStructuredExtractor(config model.ExtractorConfig) (StructuredExtractor, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIExtractor(config)

	case "gemini", "google":
		return NewGeminiExtractor(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown extractor provider: %s (supported: openai, gemini)", config.Provider)
	}
}
