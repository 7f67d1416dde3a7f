package llmclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	genai "google.golang.org/genai"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/config"
)

// GeminiClient generates text through the official genai SDK.
type GeminiClient struct {
	cfg    config.LLMModelConfig
	logger *zap.Logger
}

// NewGeminiClient validates the credential; the underlying SDK client is
// created per request because its constructor wants a context.
func NewGeminiClient(cfg config.LLMModelConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	return &GeminiClient{
		cfg:    cfg,
		logger: logger.Named("llmclient.gemini"),
	}, nil
}

// Provider returns the provider identifier.
func (c *GeminiClient) Provider() string { return string(config.ProviderGemini) }

// Close releases nothing; the SDK client holds no persistent resources.
func (c *GeminiClient) Close() error { return nil }

// Generate sends one request to the Gemini API. Errors are returned as-is:
// the synthesizer owns the degradation, so there is no retry loop here.
func (c *GeminiClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}

	temperature, maxTokens := effectiveOptions(req, c.cfg)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxTokens),
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.Options.ForceJSONFormat {
		genCfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := cli.Models.GenerateContent(ctx, c.cfg.Model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.UserPrompt}}}},
		genCfg,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini API returned no content (finish reason: %v)", finishReason(resp))
	}

	c.logger.Info("LLM generation complete",
		zap.String("model", c.cfg.Model),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return "no candidates"
	}
	return string(resp.Candidates[0].FinishReason)
}
