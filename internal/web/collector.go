package web

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
	"github.com/naga-ruthvik/certificate-verification/internal/retry"
	"github.com/naga-ruthvik/certificate-verification/internal/worker"
)

// PDFConvert turns a downloaded PDF payload into text
type PDFConvert func(data []byte) (string, error)

// Collector gathers evidence documents from a reference verification URL:
// the page itself (rendered when possible) plus any linked certificate PDFs.
type Collector struct {
	fetcher  Fetcher
	robots   *RobotsChecker // nil disables robots.txt checks
	limiter  *worker.Limiter
	convert  PDFConvert
	retryCfg model.RetryConfig
	workers  int
}

// NewCollector creates a web evidence collector
func NewCollector(fetcher Fetcher, robots *RobotsChecker, limiter *worker.Limiter, convert PDFConvert, retryCfg model.RetryConfig, downloadWorkers int) *Collector {
	if downloadWorkers <= 0 {
		downloadWorkers = 1
	}
	return &Collector{
		fetcher:  fetcher,
		robots:   robots,
		limiter:  limiter,
		convert:  convert,
		retryCfg: retryCfg,
		workers:  downloadWorkers,
	}
}

// Collect fetches the reference URL and returns evidence documents in a
// stable order: the top-level page first, then linked PDFs sorted by URL.
// An empty sequence means the top-level fetch was unrecoverable after all
// retries; every other failure degrades to a placeholder document or log line.
func (c *Collector) Collect(ctx context.Context, referenceURL string, includeLinkedPDFs bool, maxLinkedPDFs int) ([]model.EvidenceDocument, []string) {
	var log []string

	if c.robots != nil && !c.robots.CanFetch(ctx, referenceURL) {
		log = append(log, fmt.Sprintf("Warning: robots.txt disallows fetching %s", referenceURL))
		return []model.EvidenceDocument{{
			SourceID: referenceURL,
			Kind:     model.KindWebPage,
			Text:     "[fetch skipped: disallowed by robots.txt]",
			Metadata: map[string]string{"fetch_failed": "robots"},
		}}, log
	}

	topDoc, html, finalURL, fetchLog := c.fetchTopLevel(ctx, referenceURL)
	log = append(log, fetchLog...)
	if topDoc == nil {
		return nil, log
	}

	docs := []model.EvidenceDocument{*topDoc}

	if includeLinkedPDFs && html != "" {
		linked, linkLog := c.collectLinkedPDFs(ctx, html, finalURL, maxLinkedPDFs)
		docs = append(docs, linked...)
		log = append(log, linkLog...)
	}

	return docs, log
}

// fetchTopLevel attempts the rendered fetch with retries, then the plain GET
// fallback. The returned html is non-empty only for markup payloads.
func (c *Collector) fetchTopLevel(ctx context.Context, referenceURL string) (*model.EvidenceDocument, string, string, []string) {
	var log []string

	var rendered *RenderedResult
	err := retry.Do(ctx, c.retryCfg, func() error {
		res, ferr := c.fetcher.RenderedFetch(ctx, referenceURL)
		if ferr != nil {
			return retry.Classify(ferr)
		}
		rendered = res
		return nil
	})
	if err == nil && rendered != nil {
		doc := &model.EvidenceDocument{
			SourceID: rendered.FinalURL,
			Kind:     model.KindWebPage,
			Text:     CleanText(rendered.HTML),
			Metadata: map[string]string{
				"title":     rendered.Title,
				"final_url": rendered.FinalURL,
			},
		}
		log = append(log, fmt.Sprintf("Fetched rendered page %s (%d chars of clean text).", rendered.FinalURL, len(doc.Text)))
		return doc, rendered.HTML, rendered.FinalURL, log
	}
	log = append(log, fmt.Sprintf("Warning: rendered fetch failed, falling back to plain GET: %v", err))

	var plain *PlainResult
	err = retry.Do(ctx, c.retryCfg, func() error {
		res, ferr := c.fetcher.PlainFetch(ctx, referenceURL)
		if ferr != nil {
			if res != nil && retry.RetryableStatus(res.StatusCode) {
				return ferr
			}
			return retry.Classify(ferr)
		}
		plain = res
		return nil
	})
	if err != nil || plain == nil {
		log = append(log, fmt.Sprintf("Error: reference URL unreachable after retries: %v", err))
		return nil, "", "", log
	}

	if isPDFPayload(plain.ContentType, plain.FinalURL) {
		text, cerr := c.convert(plain.Body)
		if cerr != nil {
			text = fmt.Sprintf("[pdf conversion failed: %v]", cerr)
			log = append(log, fmt.Sprintf("Warning: top-level PDF conversion failed: %v", cerr))
		}
		return &model.EvidenceDocument{
			SourceID: plain.FinalURL,
			Kind:     model.KindWebPage,
			Text:     text,
			Metadata: map[string]string{"content_type": "pdf", "final_url": plain.FinalURL},
		}, "", plain.FinalURL, log
	}

	html := string(plain.Body)
	doc := &model.EvidenceDocument{
		SourceID: plain.FinalURL,
		Kind:     model.KindWebPage,
		Text:     CleanText(html),
		Metadata: map[string]string{
			"title":     PageTitle(html),
			"final_url": plain.FinalURL,
		},
	}
	log = append(log, fmt.Sprintf("Fetched page %s via plain GET (%d chars of clean text).", plain.FinalURL, len(doc.Text)))
	return doc, html, plain.FinalURL, log
}

// pdfResult carries one linked-PDF download outcome through the worker pool
type pdfResult struct {
	url  string
	text string
	note string
	err  error
}

func (r *pdfResult) GetError() error { return r.err }

type pdfJob struct {
	ctx       context.Context
	url       string
	collector *Collector
}

func (j *pdfJob) Execute(context.Context) worker.Result {
	return j.collector.downloadPDF(j.ctx, j.url)
}

// collectLinkedPDFs downloads up to maxLinkedPDFs discovered documents
// concurrently and reassembles them in sorted URL order.
func (c *Collector) collectLinkedPDFs(ctx context.Context, html, finalURL string, maxLinkedPDFs int) ([]model.EvidenceDocument, []string) {
	var log []string

	links := DiscoverPDFLinks(html, finalURL)
	if len(links) == 0 {
		return nil, log
	}
	if maxLinkedPDFs > 0 && len(links) > maxLinkedPDFs {
		log = append(log, fmt.Sprintf("Found %d linked PDFs, processing first %d.", len(links), maxLinkedPDFs))
		links = links[:maxLinkedPDFs]
	}

	pool := worker.NewPool(c.workers)
	pool.Start()
	for _, link := range links {
		pool.Submit(&pdfJob{ctx: ctx, url: link, collector: c})
	}
	results := pool.Wait()

	// Completion order is nondeterministic; reorder by URL for reproducibility
	byURL := make(map[string]*pdfResult, len(results))
	for _, res := range results {
		r := res.(*pdfResult)
		byURL[r.url] = r
	}
	sort.Strings(links)

	var docs []model.EvidenceDocument
	for _, link := range links {
		r, ok := byURL[link]
		if !ok {
			continue
		}
		if r.note != "" {
			log = append(log, r.note)
		}
		docs = append(docs, model.EvidenceDocument{
			SourceID: r.url,
			Kind:     model.KindLinkedPDF,
			Text:     r.text,
			Metadata: map[string]string{"content_type": "pdf"},
		})
	}

	return docs, log
}

// downloadPDF fetches one linked document with the shared retry policy and
// converts it to text. Failures degrade to placeholder text, never an abort.
func (c *Collector) downloadPDF(ctx context.Context, pdfURL string) *pdfResult {
	if c.robots != nil && !c.robots.CanFetch(ctx, pdfURL) {
		return &pdfResult{
			url:  pdfURL,
			text: "[download skipped: disallowed by robots.txt]",
			note: fmt.Sprintf("Warning: robots.txt disallows %s", pdfURL),
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, pdfURL); err != nil {
			return &pdfResult{
				url:  pdfURL,
				text: fmt.Sprintf("[download failed: %v]", err),
				note: fmt.Sprintf("Warning: rate-limit wait for %s failed: %v", pdfURL, err),
			}
		}
	}

	var plain *PlainResult
	err := retry.Do(ctx, c.retryCfg, func() error {
		res, ferr := c.fetcher.PlainFetch(ctx, pdfURL)
		if ferr != nil {
			if res != nil && retry.RetryableStatus(res.StatusCode) {
				return ferr
			}
			return retry.Classify(ferr)
		}
		plain = res
		return nil
	})
	if err != nil || plain == nil {
		return &pdfResult{
			url:  pdfURL,
			text: fmt.Sprintf("[download failed: %v]", err),
			note: fmt.Sprintf("Warning: linked PDF %s unreachable after retries: %v", pdfURL, err),
		}
	}

	text, cerr := c.convert(plain.Body)
	if cerr != nil {
		return &pdfResult{
			url:  pdfURL,
			text: fmt.Sprintf("[pdf conversion failed: %v]", cerr),
			note: fmt.Sprintf("Warning: conversion of %s failed: %v", pdfURL, cerr),
		}
	}
	if strings.TrimSpace(text) == "" {
		text = "[empty or scanned PDF without text layer]"
	}

	return &pdfResult{url: pdfURL, text: text}
}

// isPDFPayload classifies a plain-fetch response as a document payload
func isPDFPayload(contentType, finalURL string) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	return isPDFLink(finalURL)
}
