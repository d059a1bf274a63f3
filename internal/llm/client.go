// Package llm wraps the Gemini API for structured generation and embeddings.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// defaultGenerationModel handles resume structuring.
	defaultGenerationModel = "gemini-2.0-flash"
	// defaultEmbeddingModel produces the 768-dimension preference vectors.
	defaultEmbeddingModel = "text-embedding-004"
)

// ErrQuotaExceeded indicates the provider rejected a call for quota or rate
// reasons. Callers map this to a rate-limited response so clients back off.
var ErrQuotaExceeded = errors.New("llm quota exceeded")

// Client is an abstraction over the LLM provider.
type Client interface {
	// GenerateJSON generates JSON content from a prompt.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Embed returns a fixed-length embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client          *genai.Client
	generationModel string
	embeddingModel  string
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		generationModel: defaultGenerationModel,
		embeddingModel:  defaultEmbeddingModel,
	}, nil
}

// GenerateJSON generates JSON content from a prompt.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.generationModel)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapProviderError("failed to generate content", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// Embed returns the embedding vector for the given text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float64, error) {
	em := c.client.EmbeddingModel(c.embeddingModel)

	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, wrapProviderError("failed to embed content", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	vector := make([]float64, len(resp.Embedding.Values))
	for i, v := range resp.Embedding.Values {
		vector[i] = float64(v)
	}
	return vector, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// wrapProviderError distinguishes quota exhaustion from other provider
// failures so upstream layers can signal a retryable condition.
func wrapProviderError(msg string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w: %v", msg, ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// CleanJSONBlock removes markdown code block wrappers from JSON.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
