package llm

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tu613/vet-learning-app/internal/config"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "anthropic", "openai", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds a single request. Zero (the default) means no
	// deadline beyond the caller's context.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-sonnet"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-2.5-pro"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-pro"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-pro",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-pro",
		},
	}
}

// ConfigFromSecrets builds a Config from the environment and secrets file,
// falling back to defaults for unset values. Section keys also match the
// conventional env names, so "gemini.api_key" picks up GEMINI_API_KEY.
func ConfigFromSecrets(s *config.Secrets) Config {
	cfg := DefaultConfig()

	cfg.Gemini.APIKey = s.GetOr("", "VETLEARN_GEMINI_API_KEY", "gemini.api_key", "GOOGLE_API_KEY")
	cfg.Gemini.Model = s.GetOr(cfg.Gemini.Model, "VETLEARN_GEMINI_MODEL", "gemini.model")

	cfg.Anthropic.APIKey = s.GetOr("", "VETLEARN_ANTHROPIC_API_KEY", "anthropic.api_key")
	cfg.Anthropic.Model = s.GetOr(cfg.Anthropic.Model, "VETLEARN_ANTHROPIC_MODEL", "anthropic.model")

	cfg.OpenAI.APIKey = s.GetOr("", "VETLEARN_OPENAI_API_KEY", "openai.api_key")
	cfg.OpenAI.Model = s.GetOr(cfg.OpenAI.Model, "VETLEARN_OPENAI_MODEL", "openai.model")
	cfg.OpenAI.BaseURL = s.GetOr("", "VETLEARN_OPENAI_BASE_URL", "openai.base_url")

	cfg.OpenRouter.APIKey = s.GetOr("", "VETLEARN_OPENROUTER_API_KEY", "openrouter.api_key")
	cfg.OpenRouter.Model = s.GetOr(cfg.OpenRouter.Model, "VETLEARN_OPENROUTER_MODEL", "openrouter.model")
	cfg.OpenRouter.BaseURL = s.GetOr("", "VETLEARN_OPENROUTER_BASE_URL", "openrouter.base_url")

	if p, ok := s.First("VETLEARN_LLM_PROVIDER", "llm.provider"); ok {
		cfg.Provider = p
	} else if p, ok := cfg.discover(); ok {
		cfg.Provider = p
	}

	if v, ok := s.First("VETLEARN_LLM_TIMEOUT", "llm.timeout"); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

// discover picks the first provider with a key, in priority order
// Gemini → OpenAI → Anthropic → OpenRouter.
func (c Config) discover() (string, bool) {
	switch {
	case c.Gemini.APIKey != "":
		return "gemini", true
	case c.OpenAI.APIKey != "":
		return "openai", true
	case c.Anthropic.APIKey != "":
		return "anthropic", true
	case c.OpenRouter.APIKey != "":
		return "openrouter", true
	}
	return "", false
}

// Model returns the configured model name for the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case "anthropic":
		return resolveModel(c.Anthropic.Model, anthropicModels)
	case "openai":
		return resolveModel(c.OpenAI.Model, openaiModels)
	case "gemini":
		return resolveModel(c.Gemini.Model, geminiModels)
	case "openrouter":
		return c.OpenRouter.Model
	}
	return c.Provider
}

// Validate checks that the selected provider has its required API key set.
// A missing key wraps config.ErrMissingSecret.
func (c Config) Validate() error {
	missing := func(envKey, fileKey string) error {
		return fmt.Errorf("%w: %s (or %s in the secrets file) is required for the %s provider",
			config.ErrMissingSecret, envKey, fileKey, c.Provider)
	}

	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return missing("ANTHROPIC_API_KEY", "anthropic.api_key")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return missing("OPENAI_API_KEY", "openai.api_key")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return missing("GEMINI_API_KEY", "gemini.api_key")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return missing("OPENROUTER_API_KEY", "openrouter.api_key")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
