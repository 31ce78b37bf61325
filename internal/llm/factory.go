package llm

import (
	"context"
	"fmt"
)

// NewProvider builds the configured provider wrapped as
// caller → retry → logging → vendor. A nil sink skips request logging.
func NewProvider(ctx context.Context, cfg Config, sink EventSink) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

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
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if sink != nil {
		base = WithLogging(base, cfg.Provider, sink)
	}
	return WithRetry(base, cfg.Retry), nil
}

// NewProviderFromEnv uses EDQUEST_LLM_PROVIDER when it is set and falls
// back to whichever vendor key is present in the environment. It returns
// ErrNoProvider when neither yields a usable configuration.
func NewProviderFromEnv(ctx context.Context, sink EventSink) (Provider, Config, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, cfg, err
	}
	if cfg.Validate() != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, cfg, ErrNoProvider
		}
		discovered.MaxTokens = cfg.MaxTokens
		discovered.Timeout = cfg.Timeout
		cfg = discovered
	}

	p, err := NewProvider(ctx, cfg, sink)
	return p, cfg, err
}
