package openaiEmbedding

import (
	"context"
	"fmt"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/rag/embedding"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// client talks to any OpenAI-compatible /v1/embeddings endpoint. In the
// reference deployment that is a local inference server exposing a 300-dim
// model, but a hosted endpoint only differs by base URL and key.
type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

func NewClient(settings config.RAGSettings) embedding.Embedder {
	api := openai.NewClient(
		option.WithBaseURL(settings.EmbeddingBaseURL),
		option.WithAPIKey(settings.EmbeddingAPIKey),
		option.WithRequestTimeout(config.EmbeddingTimeout),
	)
	return &client{
		api:       api,
		model:     settings.EmbeddingModel,
		dimension: settings.EmbeddingDimension,
		logger:    logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(query)},
	})
	if err != nil {
		c.logger.Error("Embedding call failed", "error", err)
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding: empty response for query")
	}
	return c.toVector(resp.Data[0].Embedding)
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
	})
	if err != nil {
		c.logger.Error("Batch embedding call failed", "batch size", len(chunks), "error", err)
		return nil, fmt.Errorf("batch embedding: %w", err)
	}
	if len(resp.Data) != len(chunks) {
		return nil, fmt.Errorf("batch embedding: sent %d inputs, got %d vectors", len(chunks), len(resp.Data))
	}

	// The API may return items out of order; Index restores input order.
	vectors := make([][]float32, len(chunks))
	for _, item := range resp.Data {
		if item.Index < 0 || int(item.Index) >= len(vectors) {
			return nil, fmt.Errorf("batch embedding: index %d out of range", item.Index)
		}
		vec, err := c.toVector(item.Embedding)
		if err != nil {
			return nil, err
		}
		vectors[item.Index] = vec
	}
	return vectors, nil
}

// toVector narrows to float32 and enforces the configured dimension, so a
// model/collection mismatch fails loudly instead of poisoning the index.
func (c *client) toVector(values []float64) ([]float32, error) {
	if len(values) != c.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: model returned %d, configured %d", len(values), c.dimension)
	}
	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v)
	}
	return vec, nil
}
