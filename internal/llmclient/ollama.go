package llmclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	ollama "github.com/JexSrs/go-ollama"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/config"
)

// OllamaClient generates text through a local Ollama server. No credential is
// involved; availability of the endpoint is the only requirement.
type OllamaClient struct {
	cfg    config.LLMModelConfig
	client *ollama.Ollama
	logger *zap.Logger
}

// NewOllamaClient parses the endpoint and prepares the client.
func NewOllamaClient(cfg config.LLMModelConfig, logger *zap.Logger) (*OllamaClient, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama endpoint %q: %w", endpoint, err)
	}

	return &OllamaClient{
		cfg:    cfg,
		client: ollama.New(*u),
		logger: logger.Named("llmclient.ollama"),
	}, nil
}

// Provider returns the provider identifier.
func (c *OllamaClient) Provider() string { return string(config.ProviderOllama) }

// Close releases nothing.
func (c *OllamaClient) Close() error { return nil }

// Generate sends one non-streaming generate call. The library API does not
// take a context, so the call runs in a goroutine and the deadline is
// enforced here.
func (c *OllamaClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	start := time.Now()
	go func() {
		res, err := c.client.Generate(
			c.client.Generate.WithModel(c.cfg.Model),
			c.client.Generate.WithSystem(req.SystemPrompt),
			c.client.Generate.WithPrompt(req.UserPrompt),
		)
		if err != nil {
			done <- result{err: fmt.Errorf("ollama generate: %w", err)}
			return
		}
		if !res.Done {
			done <- result{err: fmt.Errorf("ollama returned an unfinished response")}
			return
		}
		if res.Response == "" {
			done <- result{err: fmt.Errorf("ollama returned an empty response")}
			return
		}
		done <- result{text: strings.TrimSpace(res.Response)}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("ollama generate: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		c.logger.Info("LLM generation complete",
			zap.String("model", c.cfg.Model),
			zap.Duration("duration", time.Since(start)),
		)
		return r.text, nil
	}
}
