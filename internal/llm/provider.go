// Package llm is the provider-neutral client used for scenario
// generation. Providers return schema-validated JSON; decorators add retry
// and request logging.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured response per call.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the content is JSON that already validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model identifier.
	ModelID() string
}

// Request is a single-turn (or short multi-turn) prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, selects the provider's native structured output.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "branching-scenario". It doubles as the
	// validation cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is the model output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage is token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserRequest builds the common system-plus-one-user-message request.
func UserRequest(system, user string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: user}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}

// finish applies the checks every provider shares: a truncated response
// is an error, and structured output must match the schema.
func finish(req Request, resp *Response) (*Response, error) {
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := ValidateJSON(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}
