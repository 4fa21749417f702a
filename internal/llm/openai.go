package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// OpenAIExtractor implements StructuredExtractor with OpenAI-compatible
// chat-completion endpoints (including proxies exposing the same API).
type OpenAIExtractor struct {
	client *openai.Client
	config model.ExtractorConfig
}

// NewOpenAIExtractor creates a new OpenAI-backed extractor
func NewOpenAIExtractor(config model.ExtractorConfig) (*OpenAIExtractor, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIExtractor{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (e *OpenAIExtractor) Name() string {
	return "openai"
}

// Extract makes a single chat-completion call in JSON mode and parses the
// response against the extraction schema.
func (e *OpenAIExtractor) Extract(ctx context.Context, prompt string) (*Extraction, error) {
	modelName := e.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := e.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(e.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Return only valid JSON. No prose.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := e.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return ParseExtraction(resp.Choices[0].Message.Content)
}
