package llmclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/config"
)

func newAnthropicTestClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewAnthropicClient(config.LLMModelConfig{
		Provider: config.ProviderAnthropic,
		Model:    "claude-3-sonnet-20240229",
		APIKey:   "test-key",
		Endpoint: srv.URL,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return client
}

func TestAnthropicGenerate_Success(t *testing.T) {
	var gotReq anthropicRequest
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"the answer"}]}`))
	})

	text, err := client.Generate(context.Background(), schemas.GenerationRequest{
		SystemPrompt: "persona",
		UserPrompt:   "question",
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", text)

	assert.Equal(t, "claude-3-sonnet-20240229", gotReq.Model)
	assert.Equal(t, "persona", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, 1000, gotReq.MaxTokens, "default token budget applies when unset")
}

func TestAnthropicGenerate_APIError(t *testing.T) {
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
	assert.Contains(t, err.Error(), "slow down")
}

func TestAnthropicGenerate_EmptyContent(t *testing.T) {
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})

	_, err := client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestAnthropicGenerate_HonorsContext(t *testing.T) {
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Generate(ctx, schemas.GenerationRequest{UserPrompt: "q"})
	assert.Error(t, err)
}
