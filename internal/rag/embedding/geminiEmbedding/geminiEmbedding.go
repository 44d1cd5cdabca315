package geminiEmbedding

import (
	"context"
	"fmt"
	"time"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/rag/embedding"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// client is the hosted alternative to the local OpenAI-compatible embedder.
// Gemini embedding models accept an output dimensionality, which keeps the
// vector space compatible with the configured collection.
type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewClient(ctx context.Context, settings config.RAGSettings) (embedding.Embedder, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: settings.GeminiAPIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding client: %w", err)
	}
	return &client{
		genAi:     c,
		model:     settings.GeminiModel,
		dimension: int32(settings.EmbeddingDimension),
		logger:    logger_i.NewLogger("gemini_embedding"),
	}, nil
}

func (c *client) Dimension() int {
	return int(c.dimension)
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	result, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		c.logger.Error("Embedding call failed", "error", err)
		return nil, fmt.Errorf("gemini embedding: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("gemini embedding: empty response")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	result, err := c.doCall(ctx, getContent(chunks))
	if err != nil && isRateLimited(err) {
		c.logger.Warn("Rate limit hit, retrying once", "batch size", len(chunks))
		time.Sleep(5 * time.Second)
		result, err = c.doCall(ctx, getContent(chunks))
	}
	if err != nil {
		c.logger.Error("Batch embedding call failed", "batch size", len(chunks), "error", err)
		return nil, fmt.Errorf("gemini batch embedding: %w", err)
	}
	if len(result.Embeddings) != len(chunks) {
		return nil, fmt.Errorf("gemini batch embedding: sent %d inputs, got %d vectors", len(chunks), len(result.Embeddings))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, r := range result.Embeddings {
		vectors[i] = r.Values
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(chunks []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contents
}

func isRateLimited(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
