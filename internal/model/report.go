package model

import "time"

// VerificationReport is the terminal artifact of one verification request.
// It is immutable, returned to the caller and never persisted by the core.
type VerificationReport struct {
	RequestID       string            `json:"request_id"`                 // Unique per verification request
	DocumentPath    string            `json:"document_path"`              // The certificate that was checked
	ReferenceURL    string            `json:"reference_url,omitempty"`    // External verification page, if any
	IsVerified      bool              `json:"is_verified"`                // Conjunctive-gate verdict
	FinalConfidence float64           `json:"final_confidence"`           // Weighted sum of signal values, in [0,1]
	Signals         []ScoreSignal     `json:"signals"`                    // All signals, stable scorer order
	AnalysisLog     []string          `json:"analysis_log"`               // Rationale trail, never empty
	ExtractedFields map[string]string `json:"extracted_fields,omitempty"` // Structured fields recovered from evidence
	Incomplete      bool              `json:"incomplete,omitempty"`       // Best-effort report after cancellation/timeout
	GeneratedAt     time.Time         `json:"generated_at"`
}

// Signal returns the recorded signal with the given name.
// Helper for rendering and tests.
func (r *VerificationReport) Signal(name string) (ScoreSignal, bool) {
	for _, s := range r.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return ScoreSignal{}, false
}
