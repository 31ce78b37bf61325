package scenariogen

import "time"

// Config controls the LLM generator and the service around it.
type Config struct {
	// Validators run in order; the first failure stops the chain.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// Attempts is how many times a retryable validation failure is
	// regenerated before giving up. Values below 1 mean one attempt.
	Attempts int

	// Timeout bounds one AI generation attempt, retries included.
	Timeout time.Duration
}

// DefaultConfig returns the standard validator chain and limits.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&ChoiceTextValidator{},
			&StructuralValidator{},
			&CoverageValidator{},
		},
		MaxTokens:   12000,
		Temperature: 0.7,
		Attempts:    2,
		Timeout:     5 * time.Minute,
	}
}
