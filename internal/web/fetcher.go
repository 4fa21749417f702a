// Package web collects evidence from an external verification source: the
// reference page itself plus any certificate PDFs it links to.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// Fetcher is the WebFetcher capability: a rendered fetch for script-driven
// pages and a plain GET fallback.
type Fetcher interface {
	RenderedFetch(ctx context.Context, rawURL string) (*RenderedResult, error)
	PlainFetch(ctx context.Context, rawURL string) (*PlainResult, error)
}

// RenderedResult is the outcome of a full-render fetch
type RenderedResult struct {
	HTML     string
	FinalURL string
	Title    string
}

// PlainResult is the outcome of a plain HTTP GET
type PlainResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
	FinalURL    string
}

// DefaultFetcher fetches with a headless browser when rendering is enabled
// and falls back to net/http otherwise.
type DefaultFetcher struct {
	httpClient    *http.Client
	userAgent     string
	maxBytes      int64
	renderTimeout time.Duration
	renderEnabled bool
}

// NewDefaultFetcher creates a fetcher from HTTP configuration
func NewDefaultFetcher(cfg model.HTTPConfig, renderEnabled bool) *DefaultFetcher {
	return &DefaultFetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: newProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:     cfg.UserAgent,
		maxBytes:      cfg.MaxBodyBytes,
		renderTimeout: cfg.Timeout,
		renderEnabled: renderEnabled,
	}
}

// PlainFetch retrieves the URL with a single GET. The status code is returned
// even for non-2xx responses so callers can classify retryability.
func (f *DefaultFetcher) PlainFetch(ctx context.Context, rawURL string) (*PlainResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &PlainResult{StatusCode: resp.StatusCode, FinalURL: resp.Request.URL.String()},
			fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &PlainResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// newProxyFunc builds a proxy selector, falling back to environment settings
func newProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
