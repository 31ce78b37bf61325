package scenariogen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/llm"
	"github.com/abhisek/edquest/internal/logging"
	"github.com/abhisek/edquest/internal/scenario"
)

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// NewLLMGenerator creates an LLMGenerator with the given provider and config.
func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, logger: logging.New("scenariogen")}
}

// Generate asks the model for a scenario and runs the validator chain.
// Retryable validation failures are regenerated up to Config.Attempts
// times.
func (g *LLMGenerator) Generate(ctx context.Context, req *Request) (*scenario.Description, error) {
	l, err := req.Ledger()
	if err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, "scenario-gen")

	attempts := max(g.config.Attempts, 1)
	prompt := llm.UserRequest(systemPrompt, buildUserMessage(req, l), ScenarioSchema, g.config.MaxTokens)
	prompt.Temperature = g.config.Temperature

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := g.provider.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}

		var d scenario.Description
		if err := json.Unmarshal(resp.Content, &d); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response: %w", err)
		}
		d.Title = req.Title()

		verr := g.validate(&d, l)
		if verr == nil {
			return &d, nil
		}
		lastErr = verr
		if !verr.Retryable {
			break
		}
		g.logger.Warn("generated scenario rejected",
			"validator", verr.Validator,
			"message", verr.Message,
			"attempt", attempt)
	}
	return nil, lastErr
}

func (g *LLMGenerator) validate(d *scenario.Description, l *ledger.Ledger) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(d, l); verr != nil {
			return verr
		}
	}
	return nil
}
