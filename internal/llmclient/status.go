package llmclient

import (
	"strings"

	"github.com/wajiha787/repolens/internal/config"
)

// ProviderStatus is the configuration view of one provider for the status
// listing. No network probe happens here; Ready only says whether the factory
// could construct the client.
type ProviderStatus struct {
	Provider  config.LLMProvider `json:"provider"`
	Active    bool               `json:"active"` // The provider selected by ai.provider.
	Model     string             `json:"model"`
	Endpoint  string             `json:"endpoint,omitempty"`
	MaskedKey string             `json:"api_key,omitempty"` // Masked; empty when no key is set.
	Ready     bool               `json:"ready"`
}

// Statuses reports the configuration state of every known provider.
func Statuses(cfg config.AIConfig) []ProviderStatus {
	out := make([]ProviderStatus, 0, len(config.KnownProviders))
	for _, p := range config.KnownProviders {
		m := cfg.ModelFor(p)
		s := ProviderStatus{
			Provider:  p,
			Active:    cfg.Provider == p,
			Model:     m.Model,
			Endpoint:  m.Endpoint,
			MaskedKey: MaskKey(m.APIKey),
		}
		// Ollama needs no credential; everything else does.
		s.Ready = p == config.ProviderOllama || m.APIKey != ""
		out = append(out, s)
	}
	return out
}

// MaskKey hides all but the edges of a credential so listings stay safe to
// paste into issues.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}
