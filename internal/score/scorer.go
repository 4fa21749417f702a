// Package score implements the independent signal scorers. Each scorer
// measures one dimension of agreement between the claim and the evidence and
// emits a normalized signal; it never decides the verdict on its own.
package score

import (
	"context"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// Input is the read-only evidence bundle every scorer receives
type Input struct {
	ClaimedName string
	Primary     *model.EvidenceDocument
	WebEvidence []model.EvidenceDocument
}

// Scorer produces one signal from the evidence bundle. Implementations must
// not return an error: missing or unusable evidence degrades to a zero or
// skipped signal with an explanatory note, never an abort.
type Scorer interface {
	// Name returns the signal name this scorer produces
	Name() string

	// Score evaluates the evidence. The returned signal's Weight is zero;
	// the fusion engine assigns weights from configuration.
	Score(ctx context.Context, in *Input) model.ScoreSignal
}

// clip bounds v to [0,1]
func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
