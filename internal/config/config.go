// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. Values are resolved by
// viper with the usual precedence: flags, then REPOLENS_* environment
// variables, then the config file, then the defaults set in SetDefaults.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" yaml:"analysis"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	AI        AIConfig        `mapstructure:"ai" yaml:"ai"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json".
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"` // Empty disables the file core.
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // Megabytes before rotation.
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // Days.
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// WorkspaceConfig controls where remote repositories are cloned and how.
type WorkspaceConfig struct {
	// Root is the base directory for cloned repositories and rotated logs.
	// Empty means ~/.repolens resolved at startup.
	Root        string `mapstructure:"root" yaml:"root"`
	CloneDepth  int    `mapstructure:"clone_depth" yaml:"clone_depth"` // 0 clones full history.
	GitHubToken string `mapstructure:"github_token" yaml:"-"`          // Optional; enables repo metadata lookups.
}

// AnalysisConfig tunes the tree walkers shared by all analyzers.
type AnalysisConfig struct {
	MaxFileSize int64         `mapstructure:"max_file_size" yaml:"max_file_size"` // Bytes; larger files are skipped.
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`     // Parallel tools for full reports.
	ToolTimeout time.Duration `mapstructure:"tool_timeout" yaml:"tool_timeout"`   // Per-tool budget.
	// PatternFile optionally replaces the built-in security pattern table.
	PatternFile string `mapstructure:"pattern_file" yaml:"pattern_file"`
}

// CacheConfig controls the per-session report cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Size    int  `mapstructure:"size" yaml:"size"`   // Reports kept per process.
	Watch   bool `mapstructure:"watch" yaml:"watch"` // Invalidate on filesystem events.
}

// LLMProvider defines the supported AI providers.
type LLMProvider string

const (
	ProviderGemini    LLMProvider = "gemini"
	ProviderOpenAI    LLMProvider = "openai"
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderOllama    LLMProvider = "ollama"
)

// KnownProviders lists every provider the client factory can construct.
var KnownProviders = []LLMProvider{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOllama}

// AIConfig selects the synthesis provider. An empty Provider disables AI mode
// entirely; answers then come from the deterministic templates.
type AIConfig struct {
	Provider LLMProvider               `mapstructure:"provider" yaml:"provider"`
	Models   map[string]LLMModelConfig `mapstructure:"models" yaml:"models"` // Keyed by provider name.
}

// LLMModelConfig defines the configuration for a single model endpoint.
type LLMModelConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"` // Empty uses the provider default.
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ModelFor returns the model configuration for a provider, falling back to a
// zero value whose Provider field is still populated.
func (a AIConfig) ModelFor(p LLMProvider) LLMModelConfig {
	if m, ok := a.Models[string(p)]; ok {
		if m.Provider == "" {
			m.Provider = p
		}
		return m
	}
	return LLMModelConfig{Provider: p}
}

// Enabled reports whether an AI provider has been selected.
func (a AIConfig) Enabled() bool { return a.Provider != "" }

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// Defaults are static; failing to unmarshal them is a programming error.
		panic(fmt.Sprintf("failed to build default config: %v", err))
	}
	return cfg
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "repolens")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Workspace --
	v.SetDefault("workspace.root", "")
	v.SetDefault("workspace.clone_depth", 50)

	// -- Analysis --
	v.SetDefault("analysis.max_file_size", 10*1024*1024)
	v.SetDefault("analysis.concurrency", 4)
	v.SetDefault("analysis.tool_timeout", "2m")
	v.SetDefault("analysis.pattern_file", "")

	// -- Cache --
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 64)
	v.SetDefault("cache.watch", false)

	// -- AI --
	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.models.openai.provider", string(ProviderOpenAI))
	v.SetDefault("ai.models.openai.model", "gpt-3.5-turbo")
	v.SetDefault("ai.models.openai.max_tokens", 1000)
	v.SetDefault("ai.models.openai.temperature", 0.7)
	v.SetDefault("ai.models.openai.api_timeout", "30s")
	v.SetDefault("ai.models.anthropic.provider", string(ProviderAnthropic))
	v.SetDefault("ai.models.anthropic.model", "claude-3-sonnet-20240229")
	v.SetDefault("ai.models.anthropic.max_tokens", 1000)
	v.SetDefault("ai.models.anthropic.api_timeout", "30s")
	v.SetDefault("ai.models.gemini.provider", string(ProviderGemini))
	v.SetDefault("ai.models.gemini.model", "gemini-1.5-flash")
	v.SetDefault("ai.models.gemini.max_tokens", 1000)
	v.SetDefault("ai.models.gemini.api_timeout", "30s")
	v.SetDefault("ai.models.ollama.provider", string(ProviderOllama))
	v.SetDefault("ai.models.ollama.model", "llama3")
	v.SetDefault("ai.models.ollama.endpoint", "http://localhost:11434")
	v.SetDefault("ai.models.ollama.api_timeout", "60s")
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind conventional environment variables for credentials so users do not
	// need REPOLENS_-prefixed duplicates of keys they already export.
	v.BindEnv("ai.models.openai.api_key", "REPOLENS_AI_MODELS_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("ai.models.anthropic.api_key", "REPOLENS_AI_MODELS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("ai.models.gemini.api_key", "REPOLENS_AI_MODELS_GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("workspace.github_token", "REPOLENS_WORKSPACE_GITHUB_TOKEN", "GITHUB_TOKEN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("analysis.concurrency must be a positive integer")
	}
	if c.Analysis.MaxFileSize <= 0 {
		return fmt.Errorf("analysis.max_file_size must be a positive integer")
	}
	if c.Cache.Enabled && c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive when the cache is enabled")
	}
	if c.AI.Provider != "" {
		known := false
		for _, p := range KnownProviders {
			if c.AI.Provider == p {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("ai.provider %q is not supported (choose one of %v)", c.AI.Provider, KnownProviders)
		}
	}
	return nil
}
