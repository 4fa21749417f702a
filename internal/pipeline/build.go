package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/naga-ruthvik/certificate-verification/internal/cache"
	"github.com/naga-ruthvik/certificate-verification/internal/document"
	"github.com/naga-ruthvik/certificate-verification/internal/llm"
	"github.com/naga-ruthvik/certificate-verification/internal/model"
	"github.com/naga-ruthvik/certificate-verification/internal/vision"
	"github.com/naga-ruthvik/certificate-verification/internal/web"
	"github.com/naga-ruthvik/certificate-verification/internal/worker"
)

// NewFromConfig wires the production collaborators: the MuPDF reader with
// Tesseract OCR fallback, the headless-browser fetcher with robots.txt and
// per-domain rate limits, SIFT matching, and the configured extraction
// provider. The returned closer releases provider clients.
func NewFromConfig(cfg *model.Config) (*Orchestrator, func() error, error) {
	extractor := document.NewExtractor(
		document.NewFitzReader(),
		document.NewTesseractRecognizer(),
		cfg.Thresholds.OCRMinChars,
	)

	var robots *web.RobotsChecker
	if cfg.Collector.RespectRobots {
		robots = web.NewRobotsChecker(
			cache.NewMemoryCache(1*time.Hour, 10*time.Minute),
			cfg.HTTP.UserAgent,
			cfg.HTTP.Timeout,
		)
	}

	collector := web.NewCollector(
		web.NewDefaultFetcher(cfg.HTTP, cfg.Collector.RenderedFetch),
		robots,
		worker.NewLimiter(cfg.Collector.DomainRPS, cfg.Collector.DomainBurst),
		document.PDFBytesToText,
		cfg.Retry,
		cfg.Workers.DownloadWorkers,
	)

	llmClient, err := llm.NewStructuredExtractor(cfg.Extractor)
	if err != nil {
		return nil, nil, fmt.Errorf("configure extraction provider: %w", err)
	}

	closer := func() error {
		if c, ok := llmClient.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}

	o := New(cfg, extractor, collector, vision.NewSIFTMatcher(), llmClient)
	return o, closer, nil
}
