package web

import (
	"reflect"
	"testing"
)

func TestDiscoverPDFLinks(t *testing.T) {
	html := `<html><body>
<a href="/certs/completion.pdf">Download</a>
<a href="https://other.example.com/b.pdf">Mirror</a>
<a href="/certs/completion.pdf">Download again</a>
<a href="#top">Top</a>
<a href="javascript:void(0)">Click</a>
<a href="mailto:help@example.com">Contact</a>
<a href="/about.html">About</a>
<a href="ftp://example.com/c.pdf">FTP</a>
</body></html>`

	got := DiscoverPDFLinks(html, "https://portal.example.com/verify/123")

	want := []string{
		"https://other.example.com/b.pdf",
		"https://portal.example.com/certs/completion.pdf",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverPDFLinks = %v, want %v", got, want)
	}
}

func TestDiscoverPDFLinksQueryStringTarget(t *testing.T) {
	html := `<a href="/download.pdf?cert=abc123">cert</a>`
	got := DiscoverPDFLinks(html, "https://portal.example.com/")
	if len(got) != 1 || got[0] != "https://portal.example.com/download.pdf?cert=abc123" {
		t.Errorf("DiscoverPDFLinks = %v", got)
	}
}

func TestDiscoverPDFLinksNoAnchors(t *testing.T) {
	if got := DiscoverPDFLinks("<html><body><p>plain</p></body></html>", "https://example.com"); got != nil {
		t.Errorf("expected nil for page without PDF links, got %v", got)
	}
}

func TestIsPDFLink(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/cert.pdf", true},
		{"https://example.com/cert.PDF", true},
		{"https://example.com/cert.pdf?dl=1", true},
		{"https://example.com/cert.html", false},
		{"https://example.com/?file=cert.pdf", false},
	}
	for _, tt := range tests {
		if got := isPDFLink(tt.url); got != tt.want {
			t.Errorf("isPDFLink(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
