// Package fuse combines the signal scores into a final confidence and a
// boolean verdict. The two are computed differently on purpose: confidence is
// a weighted sum, while the verdict is a conjunctive gate in which every
// gating signal must clear its own threshold independently.
package fuse

import (
	"fmt"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// gatingSignals must each clear their own pass point for a verified verdict.
// The structured-field signal only shifts the confidence.
var gatingSignals = []string{
	model.SignalNameMatch,
	model.SignalVisualMark,
	model.SignalMetadataPlausibility,
}

// Result is the fused outcome
type Result struct {
	IsVerified      bool
	FinalConfidence float64
	Signals         []model.ScoreSignal // Input signals with weights assigned
	Log             []string
}

// Engine fuses signals under a weight set and the gate thresholds
type Engine struct {
	weights    model.WeightConfig
	thresholds model.ThresholdConfig
}

// NewEngine creates a fusion engine
func NewEngine(weights model.WeightConfig, thresholds model.ThresholdConfig) *Engine {
	return &Engine{weights: weights, thresholds: thresholds}
}

// Fuse computes the weighted confidence and applies the conjunctive gate.
// webMode selects the weight set that includes the structured-field signal.
// The log is never empty and explains every skipped or zero signal.
func (e *Engine) Fuse(signals []model.ScoreSignal, webMode bool) Result {
	weights := e.activeWeights(signals, webMode)

	res := Result{Signals: make([]model.ScoreSignal, len(signals))}

	var confidence float64
	for i, sig := range signals {
		sig.Weight = weights[sig.Name]
		res.Signals[i] = sig

		if sig.Skipped {
			res.Log = append(res.Log, fmt.Sprintf(
				"Signal %s skipped: %s", sig.Name, firstNote(sig)))
			continue
		}
		if sig.NormalizedValue == 0 {
			res.Log = append(res.Log, fmt.Sprintf(
				"Signal %s scored zero: %s", sig.Name, firstNote(sig)))
		}
		confidence += sig.Weight * sig.NormalizedValue
	}
	res.FinalConfidence = clip(confidence)

	res.IsVerified = true
	for _, name := range gatingSignals {
		sig, ok := findSignal(signals, name)
		if !ok || sig.Skipped {
			res.IsVerified = false
			res.Log = append(res.Log, fmt.Sprintf(
				"Gate failed: signal %s is missing or skipped.", name))
			continue
		}
		threshold := e.gateThreshold(name)
		if sig.NormalizedValue < threshold {
			res.IsVerified = false
			res.Log = append(res.Log, fmt.Sprintf(
				"Gate failed: signal %s at %.2f is below its pass point %.2f.",
				name, sig.NormalizedValue, threshold))
		}
	}

	// The verdict comes from the gate, not from the weighted score. Record
	// that explicitly so a high confidence with a failed verdict is readable.
	if res.IsVerified {
		res.Log = append(res.Log, fmt.Sprintf(
			"All gating signals passed; verified with confidence %.2f.", res.FinalConfidence))
	} else {
		res.Log = append(res.Log, fmt.Sprintf(
			"Not verified: the verdict requires every gating signal to pass its own threshold; weighted confidence %.2f is informational only.",
			res.FinalConfidence))
	}

	return res
}

// activeWeights returns the configured weight set, optionally renormalized
// over non-skipped signals.
func (e *Engine) activeWeights(signals []model.ScoreSignal, webMode bool) map[string]float64 {
	base := e.weights.Document
	if webMode {
		base = e.weights.Web
	}
	if !e.weights.RenormalizeOnSkip {
		return base
	}

	var total float64
	for _, sig := range signals {
		if !sig.Skipped {
			total += base[sig.Name]
		}
	}
	if total == 0 {
		return base
	}

	scaled := make(map[string]float64, len(base))
	for _, sig := range signals {
		if !sig.Skipped {
			scaled[sig.Name] = base[sig.Name] / total
		}
	}
	return scaled
}

// gateThreshold returns the normalized pass point for a gating signal
func (e *Engine) gateThreshold(name string) float64 {
	switch name {
	case model.SignalNameMatch:
		return e.thresholds.NameScore / 100
	case model.SignalVisualMark:
		// The visual normalization already caps at the match threshold, so
		// passing means saturating it.
		return 1
	case model.SignalMetadataPlausibility:
		return 1
	}
	return 1
}

func findSignal(signals []model.ScoreSignal, name string) (model.ScoreSignal, bool) {
	for _, s := range signals {
		if s.Name == name {
			return s, true
		}
	}
	return model.ScoreSignal{}, false
}

func firstNote(sig model.ScoreSignal) string {
	if len(sig.EvidenceNotes) > 0 {
		return sig.EvidenceNotes[0]
	}
	return "no detail recorded"
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
