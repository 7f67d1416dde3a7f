package llmclient

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/config"
)

// OpenAIClient generates text through the chat-completions API.
type OpenAIClient struct {
	cfg    config.LLMModelConfig
	client *openai.Client
	logger *zap.Logger
}

// NewOpenAIClient builds the SDK client. A custom Endpoint overrides the
// default base URL, which also covers OpenAI-compatible gateways.
func NewOpenAIClient(cfg config.LLMModelConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	sdkCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		sdkCfg.BaseURL = cfg.Endpoint
	}

	return &OpenAIClient{
		cfg:    cfg,
		client: openai.NewClientWithConfig(sdkCfg),
		logger: logger.Named("llmclient.openai"),
	}, nil
}

// Provider returns the provider identifier.
func (c *OpenAIClient) Provider() string { return string(config.ProviderOpenAI) }

// Close releases nothing; the SDK client is a thin HTTP wrapper.
func (c *OpenAIClient) Close() error { return nil }

// Generate sends one chat-completion request. No retry: the synthesizer owns
// the degradation path.
func (c *OpenAIClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	temperature, maxTokens := effectiveOptions(req, c.cfg)

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	if req.Options.ForceJSONFormat {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai API returned no choices")
	}

	c.logger.Info("LLM generation complete",
		zap.String("model", c.cfg.Model),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.Choices[0].Message.Content, nil
}
