package llm

import (
	"strings"
	"testing"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

func TestBuildPrompt_IncludesSourcesAndRules(t *testing.T) {
	docs := []model.EvidenceDocument{
		{SourceID: "https://coursera.org/verify/NJZWGZG8MJ6T", Kind: model.KindWebPage, Text: "Anvesh completed Crash Course on Python"},
		{SourceID: "https://example.com/cert.pdf", Kind: model.KindLinkedPDF, Text: "certificate body"},
	}

	prompt := BuildPrompt("Anvesh\nCrash Course on Python\nGoogle", docs, DefaultFieldSchema())

	for _, want := range []string{
		"=== SOURCE: https://coursera.org/verify/NJZWGZG8MJ6T (web_page) ===",
		"=== SOURCE: https://example.com/cert.pdf (linked_pdf) ===",
		"Issuer must match exactly (case-insensitive)",
		"at least 90% similarity",
		"at least 80% similarity",
		"must match exactly if present",
		`"verified": <boolean>`,
		"Crash Course on Python",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_CapsLongSources(t *testing.T) {
	long := strings.Repeat("x", maxSourceChars+5000)
	docs := []model.EvidenceDocument{
		{SourceID: "https://example.com", Kind: model.KindWebPage, Text: long},
	}

	prompt := BuildPrompt("cert text", docs, DefaultFieldSchema())

	if len(prompt) > maxSourceChars+5000 {
		t.Errorf("Expected source block capped at %d chars, prompt length %d", maxSourceChars, len(prompt))
	}
}

func TestBuildPrompt_StableFieldOrder(t *testing.T) {
	docs := []model.EvidenceDocument{{SourceID: "u", Kind: model.KindWebPage, Text: "t"}}

	first := BuildPrompt("cert", docs, DefaultFieldSchema())
	for i := 0; i < 5; i++ {
		if got := BuildPrompt("cert", docs, DefaultFieldSchema()); got != first {
			t.Fatal("Expected identical prompts across invocations")
		}
	}
}
