package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
	"github.com/naga-ruthvik/certificate-verification/internal/pipeline"
)

var (
	claimedName  string
	referenceURL string
	outJSON      string
	timeout      time.Duration
	userAgent    string
	maxBytes     int64
	marks        map[string]string
	noRender     bool
	noRobots     bool
	noLinkedPDFs bool
	llmProvider  string
	llmModel     string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <document.pdf>",
	Short: "Verify a certificate document against available evidence",
	Long: `Verify extracts text, images and metadata from a certificate document,
optionally collects evidence from the issuer's verification page, scores
each signal independently, and fuses them into a verdict and a confidence.

Example:
  certverify verify cert.pdf --name "Anvesh Mishra"
  certverify verify cert.pdf --name "Anvesh Mishra" --url https://portal.example.com/verify/abc123
  certverify verify cert.pdf --name "Anvesh Mishra" --mark coursera=./marks/coursera.png
  certverify verify cert.pdf --name "Anvesh Mishra" --url https://... --llm-provider gemini`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&claimedName, "name", "", "claimed certificate holder name (required)")
	_ = verifyCmd.MarkFlagRequired("name")
	verifyCmd.Flags().StringVar(&referenceURL, "url", "", "issuer verification page URL (optional)")
	verifyCmd.Flags().StringVar(&outJSON, "json", "", "write the full report as JSON to this path")

	// HTTP flags
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall verification timeout")
	verifyCmd.Flags().StringVar(&userAgent, "ua", "certverify/0.1 (+https://github.com/naga-ruthvik/certificate-verification)", "HTTP User-Agent")
	verifyCmd.Flags().Int64Var(&maxBytes, "max-bytes", 10_485_760, "max response bytes to read")
	verifyCmd.Flags().BoolVar(&noRender, "no-render", false, "disable headless-browser rendering (plain GET only)")
	verifyCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	verifyCmd.Flags().BoolVar(&noLinkedPDFs, "no-linked-pdfs", false, "do not download PDFs linked from the reference page")

	// Visual mark flags
	verifyCmd.Flags().StringToStringVar(&marks, "mark", nil, "reference mark image as name=path (repeatable)")

	// Extraction provider flags
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "structured extraction provider (openai, gemini; empty disables)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "extraction model name (provider default when empty)")
}

// buildConfig assembles the effective configuration: defaults, then the
// config file, then flags. API keys come from the environment only.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.Collector.RenderedFetch = !noRender
	cfg.Collector.RespectRobots = !noRobots
	cfg.Collector.IncludeLinkedPDFs = !noLinkedPDFs

	for name, path := range marks {
		if cfg.Marks.ReferenceMarks == nil {
			cfg.Marks.ReferenceMarks = map[string]string{}
		}
		cfg.Marks.ReferenceMarks[name] = path
	}

	if llmProvider != "" {
		cfg.Extractor.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.Extractor.Model = llmModel
	}

	switch cfg.Extractor.Provider {
	case "openai":
		cfg.Extractor.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Extractor.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "gemini", "google":
		cfg.Extractor.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.Extractor.APIKey == "" {
			cfg.Extractor.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
		if cfg.Extractor.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	}

	return cfg, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	documentPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Document: %s\n", documentPath)
		fmt.Fprintf(os.Stderr, "Claimed name: %s\n", claimedName)
		if referenceURL != "" {
			fmt.Fprintf(os.Stderr, "Reference URL: %s\n", referenceURL)
		}
		fmt.Fprintln(os.Stderr)
	}

	orchestrator, closer, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	report := orchestrator.Verify(ctx, pipeline.Request{
		DocumentPath: documentPath,
		ClaimedName:  claimedName,
		ReferenceURL: referenceURL,
	})

	printReport(report)

	if outJSON != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(outJSON, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", outJSON)
		}
	}

	return nil
}

// printReport renders the report summary to stdout
func printReport(report *model.VerificationReport) {
	verdict := "NOT VERIFIED"
	if report.IsVerified {
		verdict = "VERIFIED"
	}

	fmt.Printf("\n")
	fmt.Printf("  Verdict:     %s\n", verdict)
	fmt.Printf("  Confidence:  %.2f\n", report.FinalConfidence)
	if report.Incomplete {
		fmt.Printf("  Note:        report is incomplete (interrupted)\n")
	}
	fmt.Printf("\n  Signals:\n")
	for _, sig := range report.Signals {
		state := fmt.Sprintf("%.2f (raw %.0f, weight %.2f)", sig.NormalizedValue, sig.RawValue, sig.Weight)
		if sig.Skipped {
			state = "skipped"
		}
		fmt.Printf("    %-24s %s\n", sig.Name, state)
	}

	if len(report.ExtractedFields) > 0 {
		fmt.Printf("\n  Extracted fields:\n")
		data, err := yaml.Marshal(report.ExtractedFields)
		if err == nil {
			for _, line := range splitLines(string(data)) {
				fmt.Printf("    %s\n", line)
			}
		}
	}

	fmt.Printf("\n  Analysis:\n")
	for _, line := range report.AnalysisLog {
		fmt.Printf("    - %s\n", line)
	}
	fmt.Printf("\n")
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
