package llm

import (
	"context"
	"fmt"

	"github.com/tu613/vet-learning-app/internal/logger"
	"github.com/tu613/vet-learning-app/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with the
// logging middleware. The result also implements ChatStarter.
// No retry layer is installed: every failure reaches the caller once.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (*LoggingProvider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewDemoProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, eventRepo, log), nil
}
