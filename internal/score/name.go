package score

import (
	"context"
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// NameScorer measures how well the claimed holder name appears in the
// certificate text using token-set fuzzy matching, which tolerates extra
// words, reordering and minor OCR noise.
type NameScorer struct{}

// NewNameScorer creates a name-match scorer
func NewNameScorer() *NameScorer {
	return &NameScorer{}
}

// Name implements Scorer
func (s *NameScorer) Name() string {
	return model.SignalNameMatch
}

// Score implements Scorer. The raw value is the fuzzy ratio in 0-100; the
// normalized value divides by 100.
func (s *NameScorer) Score(_ context.Context, in *Input) model.ScoreSignal {
	sig := model.ScoreSignal{Name: s.Name()}

	claimed := strings.TrimSpace(in.ClaimedName)
	if claimed == "" {
		sig.Skipped = true
		sig.Note("No claimed name provided; name matching skipped.")
		return sig
	}

	if in.Primary == nil || !in.Primary.HasText() {
		sig.Note("No text evidence available for name matching.")
		return sig
	}

	ratio := fuzzy.TokenSetRatio(strings.ToLower(claimed), strings.ToLower(in.Primary.Text))
	sig.RawValue = float64(ratio)
	sig.NormalizedValue = clip(float64(ratio) / 100)
	sig.Note(fmt.Sprintf("Name match ratio for %q: %d/100.", claimed, ratio))

	return sig
}
