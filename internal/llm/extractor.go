// Package llm implements the structured-extraction capability: an external
// model is asked to parse both evidence sets into comparable fields and judge
// their agreement under hard comparison rules. The capability is behind an
// interface so the core is testable with deterministic stubs.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// StructuredExtractor is the external field-extraction capability.
// Implementations make exactly one blocking call per request.
type StructuredExtractor interface {
	// Name returns the provider name
	Name() string

	// Extract sends the prompt and returns the parsed, schema-validated
	// extraction. Malformed output is an error; callers degrade the signal.
	Extract(ctx context.Context, prompt string) (*Extraction, error)
}

// FieldResult is the extractor's verdict on one schema field
type FieldResult struct {
	Value     string `json:"value"`
	Verified  bool   `json:"is_verified"`
	Reasoning string `json:"reasoning"`
}

// Extraction is the structured comparison returned by the capability
type Extraction struct {
	Verified bool                   `json:"verified"`
	Score    float64                `json:"score"` // Confidence in [0,1], clipped on parse
	Reason   string                 `json:"reason"`
	Fields   map[string]FieldResult `json:"fields"`
}

// extractionSchema is the contract the returned object must satisfy.
// Anything that fails validation is treated as extractor failure.
const extractionSchema = `{
  "type": "object",
  "required": ["verified", "score", "reason"],
  "properties": {
    "verified": {"type": "boolean"},
    "score": {"type": "number"},
    "reason": {"type": "string"},
    "fields": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["value", "is_verified"],
        "properties": {
          "value": {"type": ["string", "null"]},
          "is_verified": {"type": "boolean"},
          "reasoning": {"type": "string"}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("extraction.json", extractionSchema)

// ParseExtraction validates and decodes a raw model response. Markdown code
// fences around the JSON are tolerated; everything else must conform to the
// schema. The score is clipped to [0,1].
func ParseExtraction(raw string) (*Extraction, error) {
	cleaned := stripCodeFence(raw)

	var generic interface{}
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if err := compiledSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("response does not match extraction schema: %w", err)
	}

	var ex Extraction
	if err := json.Unmarshal([]byte(cleaned), &ex); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}

	if ex.Score < 0 {
		ex.Score = 0
	}
	if ex.Score > 1 {
		ex.Score = 1
	}

	return &ex, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
