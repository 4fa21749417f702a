// Package server exposes verification over HTTP. The handlers are a thin
// facade: all verification semantics live in the pipeline, and the server
// only translates requests and reports.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
	"github.com/naga-ruthvik/certificate-verification/internal/pipeline"
)

// Verifier is the verification capability the server fronts
type Verifier interface {
	Verify(ctx context.Context, req pipeline.Request) *model.VerificationReport
}

// Server handles verification requests over HTTP
type Server struct {
	verifier   Verifier
	logger     *slog.Logger
	httpClient *http.Client
	maxBytes   int64
}

// New creates a server around the given verifier
func New(verifier Verifier, logger *slog.Logger, httpTimeout time.Duration, maxBodyBytes int64) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 << 20
	}
	return &Server{
		verifier:   verifier,
		logger:     logger,
		httpClient: &http.Client{Timeout: httpTimeout},
		maxBytes:   maxBodyBytes,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/v1/verify", s.handleVerify)

	return r
}

// verifyRequest is the request body. Exactly one of document_path and
// document_url must be set.
type verifyRequest struct {
	DocumentPath string `json:"document_path,omitempty"`
	DocumentURL  string `json:"document_url,omitempty"`
	ClaimedName  string `json:"claimed_name"`
	ReferenceURL string `json:"reference_url,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	if req.ClaimedName == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "claimed_name is required"})
		return
	}
	if (req.DocumentPath == "") == (req.DocumentURL == "") {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "exactly one of document_path and document_url is required"})
		return
	}

	docPath := req.DocumentPath
	if req.DocumentURL != "" {
		tempDir, err := os.MkdirTemp("", "certverify-upload-")
		if err != nil {
			s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "no temp area available"})
			return
		}
		defer func() { _ = os.RemoveAll(tempDir) }()

		docPath, err = s.downloadDocument(r.Context(), req.DocumentURL, tempDir)
		if err != nil {
			s.logger.Warn("document download failed", "url", req.DocumentURL, "error", err)
			s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: fmt.Sprintf("download document: %v", err)})
			return
		}
	}

	start := time.Now()
	report := s.verifier.Verify(r.Context(), pipeline.Request{
		DocumentPath: docPath,
		ClaimedName:  req.ClaimedName,
		ReferenceURL: req.ReferenceURL,
	})
	s.logger.Info("verification finished",
		"request_id", report.RequestID,
		"verified", report.IsVerified,
		"confidence", report.FinalConfidence,
		"incomplete", report.Incomplete,
		"duration", time.Since(start),
	)

	// The downloaded file path is a server-side temporary; report the URL
	if req.DocumentURL != "" {
		report.DocumentPath = req.DocumentURL
	}

	s.writeJSON(w, http.StatusOK, report)
}

// downloadDocument fetches the certificate into the scoped temp area and
// returns the local path.
func (s *Server) downloadDocument(ctx context.Context, rawURL, tempDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	path := filepath.Join(tempDir, "document.pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, io.LimitReader(resp.Body, s.maxBytes)); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}

	return path, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}
