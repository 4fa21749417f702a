package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/naga-ruthvik/certificate-verification/internal/pipeline"
	"github.com/naga-ruthvik/certificate-verification/internal/server"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification HTTP service",
	Long: `Serve exposes verification over HTTP:

  POST /api/v1/verify   {"document_path"|"document_url", "claimed_name", "reference_url"?}
  GET  /healthz

Example:
  certverify serve --addr :8080
  certverify serve --addr :8080 --llm-provider gemini --mark coursera=./marks/coursera.png`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "per-request verification timeout")
	serveCmd.Flags().StringVar(&userAgent, "ua", "certverify/0.1 (+https://github.com/naga-ruthvik/certificate-verification)", "HTTP User-Agent")
	serveCmd.Flags().Int64Var(&maxBytes, "max-bytes", 10_485_760, "max response bytes to read")
	serveCmd.Flags().BoolVar(&noRender, "no-render", false, "disable headless-browser rendering (plain GET only)")
	serveCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	serveCmd.Flags().BoolVar(&noLinkedPDFs, "no-linked-pdfs", false, "do not download PDFs linked from the reference page")
	serveCmd.Flags().StringToStringVar(&marks, "mark", nil, "reference mark image as name=path (repeatable)")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "structured extraction provider (openai, gemini; empty disables)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "extraction model name (provider default when empty)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	orchestrator, closer, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	srv := server.New(orchestrator, logger, cfg.HTTP.Timeout, cfg.HTTP.MaxBodyBytes)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           http.TimeoutHandler(srv.Router(), timeout, `{"error":"verification timed out"}`),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", listenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
