package web

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

type stubFetcher struct {
	rendered    map[string]*RenderedResult
	renderedErr error
	plain       map[string]*PlainResult
	plainErr    map[string]error
}

func (s *stubFetcher) RenderedFetch(_ context.Context, rawURL string) (*RenderedResult, error) {
	if s.renderedErr != nil {
		return nil, s.renderedErr
	}
	if res, ok := s.rendered[rawURL]; ok {
		return res, nil
	}
	return nil, errors.New("rendered fetch: not found")
}

func (s *stubFetcher) PlainFetch(_ context.Context, rawURL string) (*PlainResult, error) {
	if err, ok := s.plainErr[rawURL]; ok {
		return nil, err
	}
	if res, ok := s.plain[rawURL]; ok {
		return res, nil
	}
	return nil, errors.New("fetch: connection refused")
}

func testRetryConfig() model.RetryConfig {
	return model.RetryConfig{
		MaxAttempts:     2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func passthroughConvert(data []byte) (string, error) {
	return "pdf text: " + string(data), nil
}

func TestCollectRenderedPage(t *testing.T) {
	fetcher := &stubFetcher{
		rendered: map[string]*RenderedResult{
			"https://portal.example.com/verify/1": {
				HTML:     "<html><head><title>Verify</title></head><body><p>Issued to Anvesh Mishra</p></body></html>",
				FinalURL: "https://portal.example.com/verify/1",
				Title:    "Verify",
			},
		},
	}
	c := NewCollector(fetcher, nil, nil, passthroughConvert, testRetryConfig(), 2)

	docs, log := c.Collect(context.Background(), "https://portal.example.com/verify/1", false, 0)

	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	doc := docs[0]
	if doc.Kind != model.KindWebPage {
		t.Errorf("kind = %q, want %q", doc.Kind, model.KindWebPage)
	}
	if !strings.Contains(doc.Text, "Issued to Anvesh Mishra") {
		t.Errorf("clean text missing body content: %q", doc.Text)
	}
	if doc.Metadata["title"] != "Verify" {
		t.Errorf("title metadata = %q", doc.Metadata["title"])
	}
	if len(log) == 0 {
		t.Error("expected at least one log entry")
	}
}

func TestCollectFallsBackToPlainFetch(t *testing.T) {
	fetcher := &stubFetcher{
		renderedErr: errors.New("rendered fetch disabled"),
		plain: map[string]*PlainResult{
			"https://portal.example.com/verify/2": {
				Body:        []byte("<html><head><title>Plain</title></head><body>Certificate record</body></html>"),
				ContentType: "text/html; charset=utf-8",
				StatusCode:  200,
				FinalURL:    "https://portal.example.com/verify/2",
			},
		},
	}
	c := NewCollector(fetcher, nil, nil, passthroughConvert, testRetryConfig(), 2)

	docs, log := c.Collect(context.Background(), "https://portal.example.com/verify/2", false, 0)

	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if !strings.Contains(docs[0].Text, "Certificate record") {
		t.Errorf("text = %q", docs[0].Text)
	}
	if docs[0].Metadata["title"] != "Plain" {
		t.Errorf("title metadata = %q", docs[0].Metadata["title"])
	}

	var sawFallback bool
	for _, line := range log {
		if strings.Contains(line, "falling back to plain GET") {
			sawFallback = true
		}
	}
	if !sawFallback {
		t.Errorf("expected fallback warning in log, got %v", log)
	}
}

func TestCollectTopLevelPDFPayload(t *testing.T) {
	fetcher := &stubFetcher{
		renderedErr: errors.New("rendered fetch disabled"),
		plain: map[string]*PlainResult{
			"https://portal.example.com/cert.pdf": {
				Body:        []byte("raw-pdf-bytes"),
				ContentType: "application/pdf",
				StatusCode:  200,
				FinalURL:    "https://portal.example.com/cert.pdf",
			},
		},
	}
	c := NewCollector(fetcher, nil, nil, passthroughConvert, testRetryConfig(), 2)

	docs, _ := c.Collect(context.Background(), "https://portal.example.com/cert.pdf", false, 0)

	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if docs[0].Text != "pdf text: raw-pdf-bytes" {
		t.Errorf("text = %q", docs[0].Text)
	}
	if docs[0].Metadata["content_type"] != "pdf" {
		t.Errorf("content_type metadata = %q", docs[0].Metadata["content_type"])
	}
}

func TestCollectLinkedPDFsSortedOrder(t *testing.T) {
	pageHTML := `<html><body>
<a href="/docs/zeta.pdf">z</a>
<a href="/docs/alpha.pdf">a</a>
</body></html>`
	fetcher := &stubFetcher{
		rendered: map[string]*RenderedResult{
			"https://portal.example.com/verify/3": {
				HTML:     pageHTML,
				FinalURL: "https://portal.example.com/verify/3",
				Title:    "Verify",
			},
		},
		plain: map[string]*PlainResult{
			"https://portal.example.com/docs/alpha.pdf": {
				Body: []byte("alpha"), ContentType: "application/pdf", StatusCode: 200,
				FinalURL: "https://portal.example.com/docs/alpha.pdf",
			},
			"https://portal.example.com/docs/zeta.pdf": {
				Body: []byte("zeta"), ContentType: "application/pdf", StatusCode: 200,
				FinalURL: "https://portal.example.com/docs/zeta.pdf",
			},
		},
	}
	c := NewCollector(fetcher, nil, nil, passthroughConvert, testRetryConfig(), 3)

	docs, _ := c.Collect(context.Background(), "https://portal.example.com/verify/3", true, 5)

	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3", len(docs))
	}
	if docs[0].Kind != model.KindWebPage {
		t.Errorf("first doc kind = %q, want web page", docs[0].Kind)
	}
	if docs[1].SourceID != "https://portal.example.com/docs/alpha.pdf" {
		t.Errorf("second doc = %q, want alpha.pdf first in sorted order", docs[1].SourceID)
	}
	if docs[2].SourceID != "https://portal.example.com/docs/zeta.pdf" {
		t.Errorf("third doc = %q", docs[2].SourceID)
	}
	for _, d := range docs[1:] {
		if d.Kind != model.KindLinkedPDF {
			t.Errorf("doc %s kind = %q, want linked pdf", d.SourceID, d.Kind)
		}
	}
	if docs[1].Text != "pdf text: alpha" {
		t.Errorf("alpha text = %q", docs[1].Text)
	}
}

func TestCollectLinkedPDFCap(t *testing.T) {
	var anchors strings.Builder
	fetcher := &stubFetcher{
		plain: map[string]*PlainResult{},
	}
	for i := 0; i < 5; i++ {
		u := fmt.Sprintf("https://portal.example.com/docs/cert-%d.pdf", i)
		anchors.WriteString(fmt.Sprintf(`<a href="/docs/cert-%d.pdf">c</a>`, i))
		fetcher.plain[u] = &PlainResult{
			Body: []byte(fmt.Sprintf("doc %d", i)), ContentType: "application/pdf",
			StatusCode: 200, FinalURL: u,
		}
	}
	fetcher.rendered = map[string]*RenderedResult{
		"https://portal.example.com/verify/4": {
			HTML:     "<html><body>" + anchors.String() + "</body></html>",
			FinalURL: "https://portal.example.com/verify/4",
		},
	}
	c := NewCollector(fetcher, nil, nil, passthroughConvert, testRetryConfig(), 3)

	docs, log := c.Collect(context.Background(), "https://portal.example.com/verify/4", true, 3)

	if len(docs) != 4 {
		t.Fatalf("got %d docs, want page + 3 capped PDFs", len(docs))
	}
	var sawCapNote bool
	for _, line := range log {
		if strings.Contains(line, "processing first 3") {
			sawCapNote = true
		}
	}
	if !sawCapNote {
		t.Errorf("expected cap note in log, got %v", log)
	}
}

func TestCollectLinkedPDFFailureDegrades(t *testing.T) {
	fetcher := &stubFetcher{
		rendered: map[string]*RenderedResult{
			"https://portal.example.com/verify/5": {
				HTML:     `<html><body><a href="/gone.pdf">x</a></body></html>`,
				FinalURL: "https://portal.example.com/verify/5",
			},
		},
		plainErr: map[string]error{
			"https://portal.example.com/gone.pdf": errors.New("fetch: unexpected status: 404 Not Found"),
		},
	}
	c := NewCollector(fetcher, nil, nil, passthroughConvert, testRetryConfig(), 2)

	docs, log := c.Collect(context.Background(), "https://portal.example.com/verify/5", true, 5)

	if len(docs) != 2 {
		t.Fatalf("got %d docs, want page + placeholder", len(docs))
	}
	if !strings.Contains(docs[1].Text, "[download failed") {
		t.Errorf("placeholder text = %q", docs[1].Text)
	}
	var sawWarning bool
	for _, line := range log {
		if strings.Contains(line, "unreachable after retries") {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Errorf("expected warning in log, got %v", log)
	}
}

func TestCollectUnreachableURL(t *testing.T) {
	fetcher := &stubFetcher{}
	c := NewCollector(fetcher, nil, nil, passthroughConvert, testRetryConfig(), 2)

	docs, log := c.Collect(context.Background(), "https://down.example.com/verify", false, 0)

	if len(docs) != 0 {
		t.Fatalf("got %d docs, want 0 for unreachable source", len(docs))
	}
	var sawError bool
	for _, line := range log {
		if strings.Contains(line, "unreachable after retries") {
			sawError = true
		}
	}
	if !sawError {
		t.Errorf("expected unreachable error in log, got %v", log)
	}
}

func TestCollectConversionFailure(t *testing.T) {
	fetcher := &stubFetcher{
		rendered: map[string]*RenderedResult{
			"https://portal.example.com/verify/6": {
				HTML:     `<html><body><a href="/bad.pdf">x</a></body></html>`,
				FinalURL: "https://portal.example.com/verify/6",
			},
		},
		plain: map[string]*PlainResult{
			"https://portal.example.com/bad.pdf": {
				Body: []byte("not a pdf"), ContentType: "application/pdf",
				StatusCode: 200, FinalURL: "https://portal.example.com/bad.pdf",
			},
		},
	}
	failConvert := func([]byte) (string, error) {
		return "", errors.New("cannot open memory")
	}
	c := NewCollector(fetcher, nil, nil, failConvert, testRetryConfig(), 2)

	docs, _ := c.Collect(context.Background(), "https://portal.example.com/verify/6", true, 5)

	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if !strings.Contains(docs[1].Text, "[pdf conversion failed") {
		t.Errorf("placeholder text = %q", docs[1].Text)
	}
}
