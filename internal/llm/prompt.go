package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// maxSourceChars caps each evidence block to keep the prompt within budget
const maxSourceChars = 20000

// FieldSchema maps field names to their extraction descriptions
type FieldSchema map[string]string

// DefaultFieldSchema returns the standard certificate field schema
func DefaultFieldSchema() FieldSchema {
	return FieldSchema{
		"title":       "Main title or document/course heading",
		"issuer":      "Publishing or issuing organization (e.g., Google, NPTEL, IEEE)",
		"name":        "Person or entity name the certificate was awarded to",
		"date":        "Completion or publication date in ISO format if possible",
		"duration":    "Hours for courses or page count for documents",
		"description": "1-3 sentence summary",
		"topics":      "Array of key skills/topics mentioned",
		"source_urls": "Array of source URLs from which the data was extracted",
	}
}

// BuildPrompt assembles the extraction-and-comparison prompt: the certificate
// text, every web evidence block tagged with its source, the field schema,
// and the hard comparison rules the extractor must enforce.
func BuildPrompt(certificateText string, webEvidence []model.EvidenceDocument, schema FieldSchema) string {
	var blocks strings.Builder
	for _, doc := range webEvidence {
		text := doc.Text
		if len(text) > maxSourceChars {
			text = text[:maxSourceChars]
		}
		blocks.WriteString(fmt.Sprintf("=== SOURCE: %s (%s) ===\n%s\n\n", doc.SourceID, doc.Kind, text))
	}

	// Stable field order so prompts are reproducible
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	var schemaDesc strings.Builder
	var fieldFormat strings.Builder
	for i, name := range names {
		schemaDesc.WriteString(fmt.Sprintf("- %s: %s\n", name, schema[name]))
		if i > 0 {
			fieldFormat.WriteString(",\n")
		}
		fieldFormat.WriteString(fmt.Sprintf(`    "%s": {"value": "<extracted value or null>", "is_verified": <boolean>, "reasoning": "<why this field matches or mismatches>"}`, name))
	}

	return fmt.Sprintf(`You are a strict certificate verification system that detects certificate forgery.
You will be given two pieces of text:
1. Data extracted from an uploaded certificate document.
2. Data scraped from the official verification source(s).

Your job:
- Parse both texts into the structured fields described below.
- Compare fields strictly.
- If a field is missing in either source, mark it as null.
- Do not assume or hallucinate values.

Fields to extract:
%s
Rules for verification:
- If a certificate identifier exists in both sources, it must match exactly.
- Issuer must match exactly (case-insensitive).
- Course title must match with at least 90%% similarity.
- Name must match with at least 80%% similarity (to allow for small variations like initials).
- Date must match exactly if present in both sources.
- If the majority of critical fields (issuer + title + identifier + name) match, then "verified" = true. Otherwise false.

Output must be ONLY the following JSON object. Your response MUST start with { and contain nothing else:

{
  "verified": <boolean>,
  "score": <number from 0.0 for no match to 1.0 for a perfect match>,
  "reason": "<short explanation of why it was verified or rejected>",
  "fields": {
%s
  }
}

Certificate Extracted Text:
<<<%s>>>

Verification Source Text:
<<<%s>>>
`, schemaDesc.String(), fieldFormat.String(), certificateText, blocks.String())
}
