package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/config"
)

func requestWith(temp float32, tokens int) schemas.GenerationRequest {
	return schemas.GenerationRequest{
		Options: schemas.GenerationOptions{Temperature: temp, MaxTokens: tokens},
	}
}

func testAIConfig(provider config.LLMProvider, key string) config.AIConfig {
	return config.AIConfig{
		Provider: provider,
		Models: map[string]config.LLMModelConfig{
			string(provider): {
				Provider: provider,
				Model:    "test-model",
				APIKey:   key,
			},
		},
	}
}

func TestNewClient_DisabledYieldsNilClient(t *testing.T) {
	client, err := NewClient(config.AIConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, client, "no provider configured should mean fallback-only mode")
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(testAIConfig("watson", "k"), zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watson")
}

func TestNewClient_ConstructsEachProvider(t *testing.T) {
	tests := []struct {
		provider config.LLMProvider
		wantType string
	}{
		{config.ProviderGemini, "*llmclient.GeminiClient"},
		{config.ProviderOpenAI, "*llmclient.OpenAIClient"},
		{config.ProviderAnthropic, "*llmclient.AnthropicClient"},
		{config.ProviderOllama, "*llmclient.OllamaClient"},
	}

	for _, tc := range tests {
		t.Run(string(tc.provider), func(t *testing.T) {
			client, err := NewClient(testAIConfig(tc.provider, "test-key"), zaptest.NewLogger(t))
			require.NoError(t, err)
			require.NotNil(t, client)
			t.Cleanup(func() { client.Close() })

			assert.Equal(t, string(tc.provider), client.Provider())
		})
	}
}

func TestNewClient_MissingCredential(t *testing.T) {
	// Ollama is credential-free and must still construct.
	for _, p := range []config.LLMProvider{config.ProviderGemini, config.ProviderOpenAI, config.ProviderAnthropic} {
		t.Run(string(p), func(t *testing.T) {
			_, err := NewClient(testAIConfig(p, ""), zaptest.NewLogger(t))
			assert.Error(t, err)
		})
	}

	client, err := NewClient(testAIConfig(config.ProviderOllama, ""), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()
}

func TestEffectiveOptions(t *testing.T) {
	cfg := config.LLMModelConfig{Temperature: 0.7, MaxTokens: 1000}

	t.Run("defaults", func(t *testing.T) {
		temp, tokens := effectiveOptions(requestWith(0, 0), cfg)
		assert.InDelta(t, 0.7, temp, 0.001)
		assert.Equal(t, 1000, tokens)
	})

	t.Run("request overrides", func(t *testing.T) {
		temp, tokens := effectiveOptions(requestWith(0.2, 50), cfg)
		assert.InDelta(t, 0.2, temp, 0.001)
		assert.Equal(t, 50, tokens)
	})
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "******", MaskKey("secret"))
	assert.Equal(t, "sk-t****-key", MaskKey("sk-test-api-key"))
}

func TestStatuses(t *testing.T) {
	cfg := testAIConfig(config.ProviderOpenAI, "sk-test-api-key")
	statuses := Statuses(cfg)
	require.Len(t, statuses, len(config.KnownProviders))

	byProvider := make(map[config.LLMProvider]ProviderStatus, len(statuses))
	for _, s := range statuses {
		byProvider[s.Provider] = s
	}

	openai := byProvider[config.ProviderOpenAI]
	assert.True(t, openai.Active)
	assert.True(t, openai.Ready)
	assert.NotContains(t, openai.MaskedKey, "test-api", "key must be masked")

	assert.False(t, byProvider[config.ProviderGemini].Ready, "no key means not ready")
	assert.True(t, byProvider[config.ProviderOllama].Ready, "ollama needs no credential")
}
