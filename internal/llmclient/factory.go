// Package llmclient builds the text-generation clients behind the response
// synthesizer. Exactly one provider is active per process, selected by
// configuration; every client makes a single attempt per request and leaves
// degradation decisions to the caller.
package llmclient

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/config"
)

// NewClient is a factory function that creates an LLMClient for the
// configured provider. An unconfigured AI section yields (nil, nil): the
// synthesizer treats a nil client as fallback-only mode.
func NewClient(cfg config.AIConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	model := cfg.ModelFor(cfg.Provider)
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(model, logger)
	case config.ProviderOpenAI:
		return NewOpenAIClient(model, logger)
	case config.ProviderAnthropic:
		return NewAnthropicClient(model, logger)
	case config.ProviderOllama:
		return NewOllamaClient(model, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: %q (supported: %v)",
			cfg.Provider, config.KnownProviders)
	}
}

// effectiveOptions merges per-request generation options over the model's
// configured defaults. Zero request values mean "use the default".
func effectiveOptions(req schemas.GenerationRequest, cfg config.LLMModelConfig) (temperature float32, maxTokens int) {
	temperature = cfg.Temperature
	if req.Options.Temperature > 0 {
		temperature = req.Options.Temperature
	}
	maxTokens = cfg.MaxTokens
	if req.Options.MaxTokens > 0 {
		maxTokens = req.Options.MaxTokens
	}
	return temperature, maxTokens
}
