package model

// ScoreSignal is one independent, normalized measurement of agreement between
// the claimed facts and the discovered evidence. Produced once per scorer
// invocation and read-only thereafter.
type ScoreSignal struct {
	Name            string   `json:"name"`                     // Scorer identifier (see Signal* constants)
	RawValue        float64  `json:"raw_value"`                // Scorer-native value (ratio 0-100, match count, ...)
	NormalizedValue float64  `json:"normalized_value"`         // Always in [0,1]
	Weight          float64  `json:"weight"`                   // Contribution to the weighted confidence, in [0,1]
	EvidenceNotes   []string `json:"evidence_notes,omitempty"` // Human-readable trail for this signal
	Skipped         bool     `json:"skipped,omitempty"`        // True when excluded for missing evidence/config
}

// Signal names. The fusion engine gates the verdict on the first three;
// the structured-field signal is advisory and only shifts the confidence.
const (
	SignalNameMatch            = "name_match"
	SignalVisualMark           = "visual_mark"
	SignalMetadataPlausibility = "metadata_plausibility"
	SignalStructuredField      = "structured_field"
)

// Note appends a note to the signal's evidence trail.
func (s *ScoreSignal) Note(msg string) {
	s.EvidenceNotes = append(s.EvidenceNotes, msg)
}
