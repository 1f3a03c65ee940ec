package gemini

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"lexmcp/internal/model"
)

// DefaultEmbedModel matches the dimensionality of the vectors the ingestion
// pipeline writes; changing it requires re-embedding the corpus.
const DefaultEmbedModel = "gemini-embedding-001"

// Client wraps the Gemini embedding endpoint behind model.Embedder.
type Client struct {
	client        *genai.Client
	model         string
	dimensions    int
	maxInputChars int
}

// NewClient dials the Gemini API. Close must be called on shutdown.
func NewClient(ctx context.Context, apiKey, embedModel string, dimensions, maxInputChars int) (*Client, error) {
	inner, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &model.ProviderError{
			Code:      model.CodeEmbeddingFailed,
			Message:   "failed to initialize embedding client",
			Retryable: false,
			Cause:     err,
		}
	}
	if strings.TrimSpace(embedModel) == "" {
		embedModel = DefaultEmbedModel
	}
	return &Client{
		client:        inner,
		model:         embedModel,
		dimensions:    dimensions,
		maxInputChars: maxInputChars,
	}, nil
}

// Embed returns the query embedding for text. Input beyond the configured
// character budget is truncated before submission to respect the provider
// limit; empty input is submitted as-is and the provider's rejection is
// surfaced as the typed error.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateInput(text, c.maxInputChars)

	em := c.client.EmbeddingModel(c.model)
	em.TaskType = genai.TaskTypeRetrievalQuery

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &model.ProviderError{
			Code:      model.CodeEmbeddingFailed,
			Message:   "embedding request failed: " + err.Error(),
			Retryable: true,
			Cause:     err,
		}
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, &model.ProviderError{
			Code:      model.CodeEmbeddingFailed,
			Message:   "embedding response contained no values",
			Retryable: true,
		}
	}
	if c.dimensions > 0 && len(res.Embedding.Values) != c.dimensions {
		return nil, &model.ProviderError{
			Code:      model.CodeEmbeddingFailed,
			Message:   "embedding dimensionality mismatch",
			Retryable: false,
		}
	}
	return res.Embedding.Values, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// truncateInput bounds text by character count, not bytes, so a multibyte
// rune is never split mid-sequence.
func truncateInput(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
