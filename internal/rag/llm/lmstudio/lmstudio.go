package lmstudio

import (
	"context"
	"fmt"

	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/rag/llm"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// client targets a local LM Studio server. The endpoint is unauthenticated
// and serves whatever model is loaded, so the model field in the request is
// left empty on purpose.
type client struct {
	api    openai.Client
	logger *logger_i.Logger
}

func NewClient(settings config.RAGSettings) llm.Provider {
	api := openai.NewClient(
		option.WithBaseURL(settings.LMStudioURL),
		option.WithAPIKey(""),
		option.WithRequestTimeout(config.CompletionTimeout),
	)
	return &client{
		api:    api,
		logger: logger_i.NewLogger("llm_lmstudio"),
	}
}

func (c *client) Complete(ctx context.Context, system string, user string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(""),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(config.CompletionMaxTokens),
		Temperature: openai.Float(0),
	})
	if err != nil {
		c.logger.Error("Completion call failed", "error", err)
		return "", fmt.Errorf("lmstudio completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("lmstudio completion: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
