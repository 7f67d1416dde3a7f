package schemas

import (
	"context"
)

// -- Tool Metadata --

// ToolParameter documents one input a tool accepts. Descriptors are shaped so
// they can be handed to an AI provider as function-calling metadata without
// translation.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // JSON-schema style: "string", "integer", ...
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolDescriptor is the machine-readable identity of a registered tool.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters,omitempty"`
	// RequiresCredential marks tools that need an external credential to
	// run. Every built-in analyzer reads the local tree only.
	RequiresCredential bool `json:"requires_credential"`
}

// -- LLM Client Schemas & Interface --

// GenerationOptions provides parameters to control the text generation
// process, such as creativity (temperature) and output length.
type GenerationOptions struct {
	Temperature     float32 `json:"temperature"`       // Controls randomness. Lower is more deterministic.
	MaxTokens       int     `json:"max_tokens"`        // Upper bound on generated tokens.
	ForceJSONFormat bool    `json:"force_json_format"` // If true, asks the model for valid JSON output.
}

// GenerationRequest encapsulates a complete request to a language model: the
// system persona, the user prompt, and generation options.
type GenerationRequest struct {
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	Options      GenerationOptions `json:"options"`
}

// LLMClient is the provider-agnostic interface for text generation. A call is
// a single attempt: implementations must not retry internally, and must honor
// the context's deadline.
type LLMClient interface {
	// Generate produces a text completion for the request.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Provider returns the provider identifier, e.g. "gemini" or "openai".
	Provider() string
	// Close releases any resources held by the client.
	Close() error
}
