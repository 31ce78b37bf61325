package llm

import (
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestConfigFromLookup(t *testing.T) {
	cfg, err := configFromLookup(lookupFrom(map[string]string{
		"EDQUEST_LLM_PROVIDER":       "openrouter",
		"EDQUEST_OPENROUTER_API_KEY": "sk-or",
		"EDQUEST_OPENROUTER_MODEL":   "google/gemini-2.5-flash",
		"EDQUEST_LLM_MAX_TOKENS":     "4000",
		"EDQUEST_LLM_TIMEOUT":        "45s",
		"OPENAI_API_KEY":             "ignored-without-prefix",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "sk-or" {
		t.Fatalf("provider not applied: %+v", cfg)
	}
	if cfg.OpenRouter.Model != "google/gemini-2.5-flash" {
		t.Fatalf("model = %q", cfg.OpenRouter.Model)
	}
	if cfg.MaxTokens != 4000 || cfg.Timeout != 45*time.Second {
		t.Fatalf("limits not applied: tokens=%d timeout=%s", cfg.MaxTokens, cfg.Timeout)
	}
	if cfg.OpenAI.APIKey != "" {
		t.Fatal("unprefixed variables must not be read")
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("defaults lost: %+v", cfg.Retry)
	}
}

func TestConfigFromLookup_BadValues(t *testing.T) {
	for _, env := range []map[string]string{
		{"EDQUEST_LLM_MAX_TOKENS": "lots"},
		{"EDQUEST_LLM_MAX_TOKENS": "-5"},
		{"EDQUEST_LLM_TIMEOUT": "soon"},
	} {
		if _, err := configFromLookup(lookupFrom(env)); err == nil {
			t.Errorf("expected error for %v", env)
		}
	}
}

func TestDiscoverFromLookup(t *testing.T) {
	cfg, ok := discoverFromLookup(lookupFrom(map[string]string{
		"GEMINI_API_KEY": "g-key",
		"OPENAI_API_KEY": "o-key",
	}))
	if !ok {
		t.Fatal("expected discovery to succeed")
	}
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "o-key" {
		t.Fatalf("expected openai to win over gemini, got %+v", cfg)
	}

	if _, ok := discoverFromLookup(lookupFrom(nil)); ok {
		t.Fatal("expected discovery to fail with no keys")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
