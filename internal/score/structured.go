package score

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/naga-ruthvik/certificate-verification/internal/llm"
	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// StructuredScorer asks the external extraction capability to parse both
// evidence sets into comparable fields and judge their agreement. The signal
// is advisory: it shifts the confidence but never gates the verdict, and any
// extractor failure degrades to a skipped signal.
type StructuredScorer struct {
	extractor llm.StructuredExtractor
	schema    llm.FieldSchema

	mu     sync.Mutex
	fields map[string]string
}

// NewStructuredScorer creates a structured-field scorer. A nil extractor
// produces a scorer that always skips.
func NewStructuredScorer(extractor llm.StructuredExtractor, schema llm.FieldSchema) *StructuredScorer {
	if schema == nil {
		schema = llm.DefaultFieldSchema()
	}
	return &StructuredScorer{
		extractor: extractor,
		schema:    schema,
	}
}

// Name implements Scorer
func (s *StructuredScorer) Name() string {
	return model.SignalStructuredField
}

// Score implements Scorer
func (s *StructuredScorer) Score(ctx context.Context, in *Input) model.ScoreSignal {
	sig := model.ScoreSignal{Name: s.Name()}

	if s.extractor == nil {
		sig.Skipped = true
		sig.Note("No extraction provider configured; structured comparison skipped.")
		return sig
	}
	if len(in.WebEvidence) == 0 {
		sig.Skipped = true
		sig.Note("No web evidence collected; structured comparison skipped.")
		return sig
	}

	certificateText := ""
	if in.Primary != nil {
		certificateText = in.Primary.Text
	}

	prompt := llm.BuildPrompt(certificateText, in.WebEvidence, s.schema)
	extraction, err := s.extractor.Extract(ctx, prompt)
	if err != nil {
		sig.Note(fmt.Sprintf("Structured extraction via %s failed: %v", s.extractor.Name(), err))
		sig.Note("Recording best-effort summary from raw evidence instead.")
		s.mu.Lock()
		s.fields = fallbackSummary(in.WebEvidence)
		s.mu.Unlock()
		return sig
	}

	sig.RawValue = extraction.Score
	sig.NormalizedValue = clip(extraction.Score)
	if extraction.Reason != "" {
		sig.Note(fmt.Sprintf("Extractor verdict (verified=%t): %s", extraction.Verified, extraction.Reason))
	}

	names := make([]string, 0, len(extraction.Fields))
	for name := range extraction.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make(map[string]string, len(extraction.Fields))
	for _, name := range names {
		field := extraction.Fields[name]
		if field.Value != "" {
			fields[name] = field.Value
		}
		sig.Note(fmt.Sprintf("Field %q: verified=%t (%s)", name, field.Verified, field.Reasoning))
	}

	s.mu.Lock()
	s.fields = fields
	s.mu.Unlock()

	return sig
}

// fallbackSummary recovers what it can from the raw evidence when the
// extraction capability fails: the page title and the source list.
func fallbackSummary(webEvidence []model.EvidenceDocument) map[string]string {
	fields := map[string]string{}

	var sources []string
	for _, doc := range webEvidence {
		if fields["title"] == "" && doc.Metadata["title"] != "" {
			fields["title"] = doc.Metadata["title"]
		}
		sources = append(sources, doc.SourceID)
	}
	if len(sources) > 0 {
		fields["source_urls"] = strings.Join(sources, ", ")
	}

	return fields
}

// ExtractedFields returns the field values recovered by the last Score call.
func (s *StructuredScorer) ExtractedFields() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}
