package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/naga-ruthvik/certificate-verification/internal/cache"
)

const robotsTTL = 1 * time.Hour

// RobotsChecker checks robots.txt compliance before fetching verification
// pages and linked documents. Rule bodies are cached per host.
type RobotsChecker struct {
	cache      cache.Cache
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a robots.txt checker backed by the given cache
func NewRobotsChecker(c cache.Cache, userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		cache: c,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// CanFetch checks if the URL may be fetched according to robots.txt.
// Unreachable or missing robots.txt allows the fetch.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	data, err := r.robotsData(ctx, parsed)
	if err != nil {
		// No robots.txt reachable: allow by default
		return true
	}

	return data.TestAgent(parsed.Path, r.userAgent)
}

func (r *RobotsChecker) robotsData(ctx context.Context, pageURL *url.URL) (*robotstxt.RobotsData, error) {
	key := cache.Key("robots:" + pageURL.Host)
	if body, found := r.cache.Get(key); found {
		return robotstxt.FromBytes(body)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", pageURL.Scheme, pageURL.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		// Absent robots.txt allows everything; cache the empty ruleset
		_ = r.cache.Set(key, nil, robotsTTL)
		return robotstxt.FromStatusAndBytes(404, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	_ = r.cache.Set(key, body, robotsTTL)
	return data, nil
}
