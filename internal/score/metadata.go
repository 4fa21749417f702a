package score

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// MetadataScorer checks the plausibility of the document's creation date.
// The signal is binary: 1.0 when a parseable creation date exists, is not in
// the future, and is no older than the configured window; 0.0 otherwise.
type MetadataScorer struct {
	maxAgeYears int

	now func() time.Time // injectable for tests
}

// NewMetadataScorer creates a metadata-plausibility scorer
func NewMetadataScorer(maxAgeYears int) *MetadataScorer {
	if maxAgeYears <= 0 {
		maxAgeYears = 5
	}
	return &MetadataScorer{
		maxAgeYears: maxAgeYears,
		now:         time.Now,
	}
}

// Name implements Scorer
func (s *MetadataScorer) Name() string {
	return model.SignalMetadataPlausibility
}

// Score implements Scorer
func (s *MetadataScorer) Score(_ context.Context, in *Input) model.ScoreSignal {
	sig := model.ScoreSignal{Name: s.Name()}

	if in.Primary == nil || len(in.Primary.Metadata) == 0 {
		sig.Note("No document metadata available.")
		return sig
	}

	raw, ok := in.Primary.Metadata["creationDate"]
	if !ok || strings.TrimSpace(raw) == "" {
		sig.Note("No creation date in document metadata.")
		return sig
	}

	created, err := parseCreationDate(raw)
	if err != nil {
		sig.Note(fmt.Sprintf("Unparseable creation date %q: %v", raw, err))
		return sig
	}

	now := s.now()
	if created.After(now) {
		sig.Note(fmt.Sprintf("Creation date %s is in the future; metadata implausible.", created.Format("2006-01-02")))
		return sig
	}

	oldest := now.AddDate(-s.maxAgeYears, 0, 0)
	if created.Before(oldest) {
		sig.Note(fmt.Sprintf("Warning: document creation date %s is older than %d years.",
			created.Format("2006-01-02"), s.maxAgeYears))
		return sig
	}

	sig.RawValue = 1
	sig.NormalizedValue = 1
	sig.Note(fmt.Sprintf("Creation date %s is within the %d-year plausibility window.",
		created.Format("2006-01-02"), s.maxAgeYears))

	return sig
}

// parseCreationDate handles the PDF date form "D:YYYYMMDDHHmmSS..." as well
// as a bare "YYYYMMDD".
func parseCreationDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "D:")
	if len(value) < 8 {
		return time.Time{}, fmt.Errorf("too short for a date")
	}
	return time.Parse("20060102", value[:8])
}
