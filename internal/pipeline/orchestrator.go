// Package pipeline sequences one verification request end to end: document
// extraction, web evidence collection, concurrent signal scoring, and fusion
// into a final report. The orchestrator itself holds no per-request state and
// is safe for concurrent use.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/naga-ruthvik/certificate-verification/internal/document"
	"github.com/naga-ruthvik/certificate-verification/internal/fuse"
	"github.com/naga-ruthvik/certificate-verification/internal/llm"
	"github.com/naga-ruthvik/certificate-verification/internal/model"
	"github.com/naga-ruthvik/certificate-verification/internal/score"
	"github.com/naga-ruthvik/certificate-verification/internal/vision"
	"github.com/naga-ruthvik/certificate-verification/internal/worker"
)

// Request identifies one certificate to verify
type Request struct {
	DocumentPath string
	ClaimedName  string
	ReferenceURL string // Optional; enables web evidence and structured comparison
}

// Collector is the web-evidence capability the orchestrator depends on
type Collector interface {
	Collect(ctx context.Context, referenceURL string, includeLinkedPDFs bool, maxLinkedPDFs int) ([]model.EvidenceDocument, []string)
}

// Orchestrator runs the full verification sequence
type Orchestrator struct {
	cfg       *model.Config
	extractor *document.Extractor
	collector Collector
	matcher   vision.FeatureMatcher
	llmClient llm.StructuredExtractor
	engine    *fuse.Engine

	now func() time.Time
}

// New creates an orchestrator from explicit collaborators. The collector and
// llmClient may be nil; the affected stages degrade with log entries.
func New(cfg *model.Config, extractor *document.Extractor, collector Collector, matcher vision.FeatureMatcher, llmClient llm.StructuredExtractor) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		extractor: extractor,
		collector: collector,
		matcher:   matcher,
		llmClient: llmClient,
		engine:    fuse.NewEngine(cfg.Weights, cfg.Thresholds),
		now:       time.Now,
	}
}

// Verify runs the full sequence and always returns a report, never an error.
// Failures along the way degrade individual signals; cancellation yields a
// best-effort report marked incomplete.
func (o *Orchestrator) Verify(ctx context.Context, req Request) *model.VerificationReport {
	report := &model.VerificationReport{
		RequestID:    uuid.NewString(),
		DocumentPath: req.DocumentPath,
		ReferenceURL: req.ReferenceURL,
	}

	primary, extractLog := o.extractor.Extract(ctx, req.DocumentPath)
	report.AnalysisLog = append(report.AnalysisLog, extractLog...)

	webMode := req.ReferenceURL != ""
	var webEvidence []model.EvidenceDocument
	if webMode {
		if o.collector != nil {
			var collectLog []string
			webEvidence, collectLog = o.collector.Collect(ctx, req.ReferenceURL,
				o.cfg.Collector.IncludeLinkedPDFs, o.cfg.Collector.MaxLinkedPDFs)
			report.AnalysisLog = append(report.AnalysisLog, collectLog...)
		} else {
			report.AnalysisLog = append(report.AnalysisLog,
				"Warning: no web collector available; reference URL ignored.")
			webMode = false
		}
	} else {
		report.AnalysisLog = append(report.AnalysisLog,
			"No reference URL provided; web evidence collection and structured comparison skipped.")
	}

	// Scorers are built per request: the structured scorer accumulates the
	// extracted fields for this request only.
	structured := score.NewStructuredScorer(o.llmClient, nil)
	scorers := []score.Scorer{
		score.NewNameScorer(),
		score.NewVisualScorer(o.cfg.Marks.ReferenceMarks, o.matcher, o.cfg.Thresholds.VisualMatches),
		score.NewMetadataScorer(o.cfg.Thresholds.MetadataMaxAge),
	}
	if webMode {
		scorers = append(scorers, structured)
	}

	in := &score.Input{
		ClaimedName: req.ClaimedName,
		Primary:     primary,
		WebEvidence: webEvidence,
	}
	signals := o.runScorers(ctx, scorers, in)

	fused := o.engine.Fuse(signals, webMode)
	report.IsVerified = fused.IsVerified
	report.FinalConfidence = fused.FinalConfidence
	report.Signals = fused.Signals
	report.AnalysisLog = append(report.AnalysisLog, fused.Log...)
	report.ExtractedFields = structured.ExtractedFields()

	if ctx.Err() != nil {
		report.Incomplete = true
		report.AnalysisLog = append(report.AnalysisLog,
			fmt.Sprintf("Verification interrupted (%v); report is best-effort.", ctx.Err()))
	}

	report.GeneratedAt = o.now()
	return report
}

// scorerJob carries one scorer invocation through the worker pool. The
// request context rides on the job because the pool runs its own context.
type scorerJob struct {
	ctx    context.Context
	index  int
	scorer score.Scorer
	input  *score.Input
}

type scorerResult struct {
	index  int
	signal model.ScoreSignal
}

func (r *scorerResult) GetError() error { return nil }

func (j *scorerJob) Execute(context.Context) worker.Result {
	return &scorerResult{index: j.index, signal: j.scorer.Score(j.ctx, j.input)}
}

// runScorers fans the scorers out over the pool and reassembles the signals
// in registration order regardless of completion order.
func (o *Orchestrator) runScorers(ctx context.Context, scorers []score.Scorer, in *score.Input) []model.ScoreSignal {
	pool := worker.NewPool(o.cfg.Workers.ScorerWorkers)
	pool.Start()
	for i, s := range scorers {
		pool.Submit(&scorerJob{ctx: ctx, index: i, scorer: s, input: in})
	}
	results := pool.Wait()

	signals := make([]model.ScoreSignal, len(scorers))
	for i, s := range scorers {
		// Placeholder in case a result went missing on shutdown
		signals[i] = model.ScoreSignal{Name: s.Name(), Skipped: true}
	}
	for _, res := range results {
		r := res.(*scorerResult)
		signals[r.index] = r.signal
	}
	return signals
}
