package model

import "time"

// Config holds all tunable parameters for a verification deployment.
// It is constructed once (DefaultConfig + overrides from flags/env/file)
// and passed into the orchestrator at construction time.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http" json:"http"`
	Retry      RetryConfig      `yaml:"retry" json:"retry"`
	Collector  CollectorConfig  `yaml:"collector" json:"collector"`
	Weights    WeightConfig     `yaml:"weights" json:"weights"`
	Thresholds ThresholdConfig  `yaml:"thresholds" json:"thresholds"`
	Marks      MarkConfig       `yaml:"marks" json:"marks"`
	Extractor  ExtractorConfig  `yaml:"extractor" json:"extractor"`
	Workers    WorkerConfig     `yaml:"workers" json:"workers"`
}

// HTTPConfig controls outbound HTTP behavior
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// RetryConfig controls the shared retry-with-backoff policy applied to all
// network collaborators (rendered fetch, plain fetch, linked-PDF downloads).
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts" json:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval" json:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval" json:"max_interval"`
}

// CollectorConfig controls web evidence collection
type CollectorConfig struct {
	IncludeLinkedPDFs bool    `yaml:"include_linked_pdfs" json:"include_linked_pdfs"`
	MaxLinkedPDFs     int     `yaml:"max_linked_pdfs" json:"max_linked_pdfs"`
	RenderedFetch     bool    `yaml:"rendered_fetch" json:"rendered_fetch"`
	RespectRobots     bool    `yaml:"respect_robots" json:"respect_robots"`
	DomainRPS         float64 `yaml:"domain_rps" json:"domain_rps"`
	DomainBurst       int     `yaml:"domain_burst" json:"domain_burst"`
}

// WeightConfig carries both weight sets. Document mode applies when no
// reference URL is given; web mode applies when the structured-field scorer
// participates. Each active set sums to 1.0.
type WeightConfig struct {
	Document map[string]float64 `yaml:"document" json:"document"`
	Web      map[string]float64 `yaml:"web" json:"web"`

	// RenormalizeOnSkip rescales remaining weights proportionally when a
	// signal is skipped for missing evidence. When false, a skipped signal's
	// weight is forfeited and the achievable confidence drops.
	RenormalizeOnSkip bool `yaml:"renormalize_on_skip" json:"renormalize_on_skip"`
}

// ThresholdConfig holds the per-signal pass points used by the conjunctive gate
type ThresholdConfig struct {
	NameScore      float64 `yaml:"name_score" json:"name_score"`             // Fuzzy ratio, 0-100
	VisualMatches  int     `yaml:"visual_matches" json:"visual_matches"`     // Good-match count cap and pass point
	MetadataMaxAge int     `yaml:"metadata_max_age" json:"metadata_max_age"` // Years since creation date
	OCRMinChars    int     `yaml:"ocr_min_chars" json:"ocr_min_chars"`       // Below this, fall back to OCR
}

// MarkConfig points at the authentic reference mark images (issuer logos)
// used by the visual-mark scorer. Keyed by mark name.
type MarkConfig struct {
	ReferenceMarks map[string]string `yaml:"reference_marks" json:"reference_marks"`
}

// ExtractorConfig configures the external structured-extraction capability
type ExtractorConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "openai", "gemini", "" = disabled
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"` // From env only, never serialized
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// WorkerConfig controls concurrency
type WorkerConfig struct {
	DownloadWorkers int `yaml:"download_workers" json:"download_workers"`
	ScorerWorkers   int `yaml:"scorer_workers" json:"scorer_workers"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "certverify/0.1 (+https://github.com/naga-ruthvik/certificate-verification)",
			MaxBodyBytes: 10 << 20,
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 1 * time.Second,
			MaxInterval:     8 * time.Second,
		},
		Collector: CollectorConfig{
			IncludeLinkedPDFs: true,
			MaxLinkedPDFs:     3,
			RenderedFetch:     true,
			RespectRobots:     true,
			DomainRPS:         2,
			DomainBurst:       4,
		},
		Weights: WeightConfig{
			Document: map[string]float64{
				SignalNameMatch:            0.4,
				SignalVisualMark:           0.4,
				SignalMetadataPlausibility: 0.2,
			},
			Web: map[string]float64{
				SignalNameMatch:            0.3,
				SignalVisualMark:           0.2,
				SignalMetadataPlausibility: 0.1,
				SignalStructuredField:      0.4,
			},
			RenormalizeOnSkip: false,
		},
		Thresholds: ThresholdConfig{
			NameScore:      85,
			VisualMatches:  50,
			MetadataMaxAge: 5,
			OCRMinChars:    20,
		},
		Marks: MarkConfig{
			ReferenceMarks: map[string]string{},
		},
		Extractor: ExtractorConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 1000,
		},
		Workers: WorkerConfig{
			DownloadWorkers: 3,
			ScorerWorkers:   4,
		},
	}
}

// WeightsFor returns the weight set for the given mode.
func (c *Config) WeightsFor(webMode bool) map[string]float64 {
	if webMode {
		return c.Weights.Web
	}
	return c.Weights.Document
}
