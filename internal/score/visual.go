package score

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
	"github.com/naga-ruthvik/certificate-verification/internal/vision"
)

// VisualScorer compares authentic reference marks (issuer logos, seals)
// against the images extracted from the certificate. The raw value is the
// best good-match count across every mark/image pair; anything at or above
// the configured cap normalizes to 1.0.
type VisualScorer struct {
	marks      map[string]string // mark name -> image file path
	matcher    vision.FeatureMatcher
	maxMatches int

	readFile func(string) ([]byte, error) // injectable for tests
}

// NewVisualScorer creates a visual-mark scorer over the configured marks
func NewVisualScorer(marks map[string]string, matcher vision.FeatureMatcher, maxMatches int) *VisualScorer {
	if maxMatches <= 0 {
		maxMatches = 50
	}
	return &VisualScorer{
		marks:      marks,
		matcher:    matcher,
		maxMatches: maxMatches,
		readFile:   os.ReadFile,
	}
}

// Name implements Scorer
func (s *VisualScorer) Name() string {
	return model.SignalVisualMark
}

// Score implements Scorer. Missing marks or a document without images skip
// the signal; unreadable marks and matcher failures are noted per pair and
// the best surviving count wins.
func (s *VisualScorer) Score(_ context.Context, in *Input) model.ScoreSignal {
	sig := model.ScoreSignal{Name: s.Name()}

	if len(s.marks) == 0 {
		sig.Skipped = true
		sig.Note("No reference marks configured; visual matching skipped.")
		return sig
	}
	if in.Primary == nil || in.Primary.ImageCount() == 0 {
		sig.Skipped = true
		sig.Note("No images extracted from document; visual matching skipped.")
		return sig
	}

	// Stable mark order keeps the note trail reproducible
	names := make([]string, 0, len(s.marks))
	for name := range s.marks {
		names = append(names, name)
	}
	sort.Strings(names)

	best := 0
	bestMark := ""
	for _, name := range names {
		refData, err := s.readFile(s.marks[name])
		if err != nil {
			sig.Note(fmt.Sprintf("Warning: could not read reference mark %q: %v", name, err))
			continue
		}

		for _, img := range in.Primary.Images {
			count, err := s.matcher.GoodMatchCount(refData, img.Data)
			if err != nil {
				sig.Note(fmt.Sprintf("Warning: matching %q against page %d image failed: %v", name, img.Page, err))
				continue
			}
			if count > best {
				best = count
				bestMark = name
			}
		}
	}

	sig.RawValue = float64(best)
	capped := best
	if capped > s.maxMatches {
		capped = s.maxMatches
	}
	sig.NormalizedValue = clip(float64(capped) / float64(s.maxMatches))

	if bestMark != "" {
		sig.Note(fmt.Sprintf("Best visual match: %d good keypoints against mark %q.", best, bestMark))
	} else {
		sig.Note("No visual correspondence found against any reference mark.")
	}

	return sig
}
