package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every edquest-specific environment variable.
const EnvPrefix = "EDQUEST_"

// Config selects and configures a provider.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter" or
	// "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// MaxTokens bounds a generated scenario. Branching scenarios are
	// long, so this is far above a chat default.
	MaxTokens int

	// Timeout bounds one generation including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig also serves OpenAI-compatible endpoints through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig is exponential backoff with jitter.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig is Anthropic with a Sonnet-class model.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-sonnet"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "anthropic/claude-sonnet-4"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 2 * time.Second,
			MaxWait:     20 * time.Second,
			Multiplier:  2.0,
		},
		MaxTokens: 12000,
		Timeout:   3 * time.Minute,
	}
}

// envBinding ties an EDQUEST_* variable to a config field.
type envBinding struct {
	name string
	set  func(c *Config, v string) error
}

func stringField(get func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*get(c) = v
		return nil
	}
}

var envBindings = []envBinding{
	{"LLM_PROVIDER", stringField(func(c *Config) *string { return &c.Provider })},
	{"ANTHROPIC_API_KEY", stringField(func(c *Config) *string { return &c.Anthropic.APIKey })},
	{"ANTHROPIC_MODEL", stringField(func(c *Config) *string { return &c.Anthropic.Model })},
	{"ANTHROPIC_BASE_URL", stringField(func(c *Config) *string { return &c.Anthropic.BaseURL })},
	{"OPENAI_API_KEY", stringField(func(c *Config) *string { return &c.OpenAI.APIKey })},
	{"OPENAI_MODEL", stringField(func(c *Config) *string { return &c.OpenAI.Model })},
	{"OPENAI_BASE_URL", stringField(func(c *Config) *string { return &c.OpenAI.BaseURL })},
	{"GEMINI_API_KEY", stringField(func(c *Config) *string { return &c.Gemini.APIKey })},
	{"GEMINI_MODEL", stringField(func(c *Config) *string { return &c.Gemini.Model })},
	{"OPENROUTER_API_KEY", stringField(func(c *Config) *string { return &c.OpenRouter.APIKey })},
	{"OPENROUTER_MODEL", stringField(func(c *Config) *string { return &c.OpenRouter.Model })},
	{"LLM_MAX_TOKENS", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("want a positive integer, got %q", v)
		}
		c.MaxTokens = n
		return nil
	}},
	{"LLM_TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Timeout = d
		return nil
	}},
}

// ConfigFromEnv overlays EDQUEST_* variables on DefaultConfig.
func ConfigFromEnv() (Config, error) {
	return configFromLookup(os.LookupEnv)
}

func configFromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.set(&cfg, v); err != nil {
			return cfg, fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
		}
	}
	return cfg, nil
}

// DiscoverConfig looks for the vendors' standard key variables in the
// order Anthropic, OpenAI, Gemini, OpenRouter and configures the first
// one found.
func DiscoverConfig() (Config, bool) {
	return discoverFromLookup(os.LookupEnv)
}

func discoverFromLookup(lookup func(string) (string, bool)) (Config, bool) {
	cfg := DefaultConfig()
	probes := []struct {
		env      string
		provider string
		key      *string
	}{
		{"ANTHROPIC_API_KEY", "anthropic", &cfg.Anthropic.APIKey},
		{"OPENAI_API_KEY", "openai", &cfg.OpenAI.APIKey},
		{"GEMINI_API_KEY", "gemini", &cfg.Gemini.APIKey},
		{"OPENROUTER_API_KEY", "openrouter", &cfg.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if v, ok := lookup(p.env); ok && v != "" {
			cfg.Provider = p.provider
			*p.key = v
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has a key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s%s_API_KEY is required for the %s provider", EnvPrefix, strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
