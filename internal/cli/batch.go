package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
	"github.com/naga-ruthvik/certificate-verification/internal/pipeline"
	"github.com/naga-ruthvik/certificate-verification/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify multiple certificates from a file in parallel",
	Long: `Batch verifies multiple certificates concurrently.

The input file contains one request per line:
  path/to/cert.pdf,Claimed Name
  path/to/cert.pdf,Claimed Name,https://portal.example.com/verify/abc

Lines starting with # and blank lines are ignored. One JSON report is
written per certificate into the output directory.

Example:
  certverify batch certs.txt
  certverify batch certs.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent verifications")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./certverify-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().DurationVar(&timeout, "verify-timeout", 2*time.Minute, "timeout for individual verifications")
	batchCmd.Flags().StringVar(&userAgent, "ua", "certverify/0.1 (+https://github.com/naga-ruthvik/certificate-verification)", "HTTP User-Agent")
	batchCmd.Flags().Int64Var(&maxBytes, "max-bytes", 10_485_760, "max response bytes to read")
	batchCmd.Flags().BoolVar(&noRender, "no-render", false, "disable headless-browser rendering (plain GET only)")
	batchCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	batchCmd.Flags().BoolVar(&noLinkedPDFs, "no-linked-pdfs", false, "do not download PDFs linked from the reference page")
	batchCmd.Flags().StringToStringVar(&marks, "mark", nil, "reference mark image as name=path (repeatable)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "structured extraction provider (openai, gemini; empty disables)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "extraction model name (provider default when empty)")
}

// batchEntry is one parsed input line
type batchEntry struct {
	line         int
	documentPath string
	claimedName  string
	referenceURL string
}

type batchJob struct {
	ctx          context.Context
	entry        batchEntry
	orchestrator *pipeline.Orchestrator
	perTimeout   time.Duration
}

type batchResult struct {
	entry  batchEntry
	report *model.VerificationReport
}

func (r *batchResult) GetError() error { return nil }

func (j *batchJob) Execute(context.Context) worker.Result {
	ctx, cancel := context.WithTimeout(j.ctx, j.perTimeout)
	defer cancel()

	report := j.orchestrator.Verify(ctx, pipeline.Request{
		DocumentPath: j.entry.documentPath,
		ClaimedName:  j.entry.claimedName,
		ReferenceURL: j.entry.referenceURL,
	})
	return &batchResult{entry: j.entry, report: report}
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	entries, err := readBatchFile(file)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no requests found in %s", file)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	orchestrator, closer, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	fmt.Fprintf(os.Stderr, "Verifying %d certificates with %d workers...\n\n", len(entries), concurrency)

	pool := worker.NewPool(concurrency)
	pool.Start()
	for _, entry := range entries {
		pool.Submit(&batchJob{
			ctx:          ctx,
			entry:        entry,
			orchestrator: orchestrator,
			perTimeout:   timeout,
		})
	}
	results := pool.Wait()

	verified := 0
	failed := 0
	for _, res := range results {
		r := res.(*batchResult)

		slug := sanitizeFilename(r.entry.documentPath)
		reportPath := filepath.Join(outputDir, fmt.Sprintf("%s-%s.json", slug, r.report.RequestID[:8]))

		data, err := json.MarshalIndent(r.report, "", "  ")
		if err == nil {
			err = os.WriteFile(reportPath, data, 0o644)
		}
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "x %s: write report: %v\n", r.entry.documentPath, err)
			continue
		}

		verdict := "not verified"
		if r.report.IsVerified {
			verdict = "verified"
			verified++
		}
		fmt.Fprintf(os.Stderr, "- %s: %s (confidence %.2f) -> %s\n",
			r.entry.documentPath, verdict, r.report.FinalConfidence, reportPath)
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d total, %d verified, %d write failures\n", len(results), verified, failed)
	return nil
}

// readBatchFile parses "path,claimed_name[,reference_url]" lines
func readBatchFile(path string) ([]batchEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []batchEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ",", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: want 'path,claimed_name[,reference_url]', got %q", lineNo, line)
		}

		entry := batchEntry{
			line:         lineNo,
			documentPath: strings.TrimSpace(parts[0]),
			claimedName:  strings.TrimSpace(parts[1]),
		}
		if len(parts) == 3 {
			entry.referenceURL = strings.TrimSpace(parts[2])
		}
		if entry.documentPath == "" || entry.claimedName == "" {
			return nil, fmt.Errorf("line %d: path and claimed_name must be non-empty", lineNo)
		}

		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}

	return entries, nil
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filepath.Base(s)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}

	return s
}
