package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// GeminiExtractor implements StructuredExtractor with Google's Gemini models
// in JSON response mode.
type GeminiExtractor struct {
	client *genai.Client
	config model.ExtractorConfig
}

// NewGeminiExtractor creates a new Gemini-backed extractor
func NewGeminiExtractor(config model.ExtractorConfig) (*GeminiExtractor, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiExtractor{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (e *GeminiExtractor) Name() string {
	return "gemini"
}

// Close releases the underlying client
func (e *GeminiExtractor) Close() error {
	return e.client.Close()
}

// Extract makes a single generate-content call and parses the response
// against the extraction schema.
func (e *GeminiExtractor) Extract(ctx context.Context, prompt string) (*Extraction, error) {
	modelName := e.config.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}

	timeout := time.Duration(e.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gm := e.client.GenerativeModel(modelName)
	gm.ResponseMIMEType = "application/json"
	gm.SetTemperature(0)
	if e.config.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(e.config.MaxTokens))
	}

	resp, err := gm.GenerateContent(ctxWithTimeout, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	var raw string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw += string(text)
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	return ParseExtraction(raw)
}
