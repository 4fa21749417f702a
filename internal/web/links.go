package web

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// DiscoverPDFLinks finds every hyperlink in the markup whose path indicates a
// PDF target, resolved against the page's final URL. Results are de-duplicated
// and sorted lexicographically so downstream processing is reproducible.
func DiscoverPDFLinks(htmlContent string, finalURL string) []string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	base, err := url.Parse(finalURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				resolved := resolveLink(base, strings.TrimSpace(attr.Val))
				if resolved == "" || !isPDFLink(resolved) {
					continue
				}
				if !seen[resolved] {
					seen[resolved] = true
					links = append(links, resolved)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	sort.Strings(links)
	return links
}

// resolveLink resolves href against base, keeping only http(s) targets
func resolveLink(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	return resolved.String()
}

// isPDFLink reports whether the URL path indicates a PDF document
func isPDFLink(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(parsed.Path), ".pdf")
}
