package web

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// RenderedFetch loads the page in a headless browser with script execution,
// waits for the document to settle, and returns the final DOM.
func (f *DefaultFetcher) RenderedFetch(ctx context.Context, rawURL string) (*RenderedResult, error) {
	if !f.renderEnabled {
		return nil, fmt.Errorf("rendered fetch disabled")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, f.renderTimeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.UserAgent(f.userAgent),
			chromedp.Flag("ignore-certificate-errors", true),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html, title, finalURL string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		// Some verification pages populate content from late scripts
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return nil, fmt.Errorf("rendered fetch: %w", err)
	}

	if finalURL == "" {
		finalURL = rawURL
	}

	return &RenderedResult{
		HTML:     html,
		FinalURL: finalURL,
		Title:    title,
	}, nil
}
