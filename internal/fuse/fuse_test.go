package fuse

import (
	"math"
	"strings"
	"testing"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

func testEngine(renormalize bool) *Engine {
	weights := model.WeightConfig{
		Document: map[string]float64{
			model.SignalNameMatch:            0.4,
			model.SignalVisualMark:           0.4,
			model.SignalMetadataPlausibility: 0.2,
		},
		Web: map[string]float64{
			model.SignalNameMatch:            0.3,
			model.SignalVisualMark:           0.2,
			model.SignalMetadataPlausibility: 0.1,
			model.SignalStructuredField:      0.4,
		},
		RenormalizeOnSkip: renormalize,
	}
	thresholds := model.ThresholdConfig{
		NameScore:      85,
		VisualMatches:  50,
		MetadataMaxAge: 5,
	}
	return NewEngine(weights, thresholds)
}

func signal(name string, normalized float64) model.ScoreSignal {
	return model.ScoreSignal{Name: name, NormalizedValue: normalized}
}

func skipped(name string, note string) model.ScoreSignal {
	return model.ScoreSignal{Name: name, Skipped: true, EvidenceNotes: []string{note}}
}

func TestFuseAllGatesPass(t *testing.T) {
	e := testEngine(false)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 0.95),
		signal(model.SignalVisualMark, 1.0),
		signal(model.SignalMetadataPlausibility, 1.0),
	}, false)

	if !res.IsVerified {
		t.Fatalf("want verified, log: %v", res.Log)
	}
	want := 0.4*0.95 + 0.4*1.0 + 0.2*1.0
	if math.Abs(res.FinalConfidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", res.FinalConfidence, want)
	}
	if len(res.Log) == 0 {
		t.Error("analysis log must never be empty")
	}
}

// A high weighted average with one failed gate must still refuse the verdict.
func TestFuseGateOverridesWeightedAverage(t *testing.T) {
	e := testEngine(false)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 0.9),
		signal(model.SignalVisualMark, 0.9),
		signal(model.SignalMetadataPlausibility, 0),
	}, false)

	if res.FinalConfidence <= 0.5 {
		t.Fatalf("precondition broken: weighted average %v should exceed 0.5", res.FinalConfidence)
	}
	if res.IsVerified {
		t.Error("metadata gate at 0 must refuse the verdict regardless of confidence")
	}
	var cited bool
	for _, line := range res.Log {
		if strings.Contains(line, model.SignalMetadataPlausibility) && strings.Contains(line, "Gate failed") {
			cited = true
		}
	}
	if !cited {
		t.Errorf("log must cite the failed gate, got %v", res.Log)
	}
}

func TestFuseNameBelowPassPoint(t *testing.T) {
	e := testEngine(false)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 0.84),
		signal(model.SignalVisualMark, 1.0),
		signal(model.SignalMetadataPlausibility, 1.0),
	}, false)

	if res.IsVerified {
		t.Error("name at 0.84 is below the 0.85 pass point")
	}
}

func TestFuseVisualMustSaturate(t *testing.T) {
	e := testEngine(false)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 0.95),
		signal(model.SignalVisualMark, 0.98),
		signal(model.SignalMetadataPlausibility, 1.0),
	}, false)

	if res.IsVerified {
		t.Error("visual mark below its cap must fail the gate")
	}
}

func TestFuseSkippedGatingSignalFailsGate(t *testing.T) {
	e := testEngine(false)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 0.95),
		skipped(model.SignalVisualMark, "No reference marks configured; visual matching skipped."),
		signal(model.SignalMetadataPlausibility, 1.0),
	}, false)

	if res.IsVerified {
		t.Error("skipped gating signal must fail the gate")
	}
	var noted bool
	for _, line := range res.Log {
		if strings.Contains(line, model.SignalVisualMark) && strings.Contains(line, "skipped") {
			noted = true
		}
	}
	if !noted {
		t.Errorf("log must explain the skipped signal, got %v", res.Log)
	}
}

// The structured-field signal shifts confidence but never gates.
func TestFuseStructuredSignalIsAdvisory(t *testing.T) {
	e := testEngine(false)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 0.95),
		signal(model.SignalVisualMark, 1.0),
		signal(model.SignalMetadataPlausibility, 1.0),
		signal(model.SignalStructuredField, 0),
	}, true)

	if !res.IsVerified {
		t.Errorf("zero structured signal must not fail the gate, log: %v", res.Log)
	}
	want := 0.3*0.95 + 0.2*1.0 + 0.1*1.0
	if math.Abs(res.FinalConfidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", res.FinalConfidence, want)
	}
}

// Default behavior: a skipped signal leaves the weight table untouched, so
// the achievable confidence silently drops.
func TestFuseSkipWithoutRenormalization(t *testing.T) {
	e := testEngine(false)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 1.0),
		skipped(model.SignalVisualMark, "no images"),
		signal(model.SignalMetadataPlausibility, 1.0),
	}, false)

	want := 0.4*1.0 + 0.2*1.0
	if math.Abs(res.FinalConfidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v without renormalization", res.FinalConfidence, want)
	}
}

func TestFuseSkipWithRenormalization(t *testing.T) {
	e := testEngine(true)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 1.0),
		skipped(model.SignalVisualMark, "no images"),
		signal(model.SignalMetadataPlausibility, 1.0),
	}, false)

	if math.Abs(res.FinalConfidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0 with renormalized weights", res.FinalConfidence)
	}
}

func TestFuseAssignsWeights(t *testing.T) {
	e := testEngine(false)

	res := e.Fuse([]model.ScoreSignal{
		signal(model.SignalNameMatch, 0.9),
		signal(model.SignalVisualMark, 1.0),
		signal(model.SignalMetadataPlausibility, 1.0),
	}, false)

	for _, sig := range res.Signals {
		if sig.Weight == 0 {
			t.Errorf("signal %s has no weight assigned", sig.Name)
		}
	}
}
