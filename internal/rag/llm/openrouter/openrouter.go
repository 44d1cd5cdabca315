package openrouter

import (
	"context"
	"fmt"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/rag/llm"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// client routes completions through OpenRouter's hosted multi-model API.
// OpenRouter speaks the OpenAI chat wire format; the Referer/X-Title headers
// are its app-attribution convention.
type client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

func NewClient(settings config.RAGSettings) llm.Provider {
	api := openai.NewClient(
		option.WithBaseURL(config.OpenRouterBaseURL),
		option.WithAPIKey(settings.OpenRouterAPIKey),
		option.WithHeader("HTTP-Referer", "http://localhost"),
		option.WithHeader("X-Title", "DogVet RAG"),
		option.WithRequestTimeout(config.CompletionTimeout),
	)
	return &client{
		api:    api,
		model:  settings.OpenRouterModel,
		logger: logger_i.NewLogger("llm_openrouter"),
	}
}

func (c *client) Complete(ctx context.Context, system string, user string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(config.CompletionMaxTokens),
		Temperature: openai.Float(0),
	})
	if err != nil {
		c.logger.Error("Completion call failed", "model", c.model, "error", err)
		return "", fmt.Errorf("openrouter completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter completion: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
