package scenariogen

import (
	"fmt"

	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/scenario"
)

// Validator checks (and may normalize) a generated description.
type Validator interface {
	// Name is a short identifier used in errors and logs.
	Name() string

	// Validate returns nil when d passes.
	Validate(d *scenario.Description, l *ledger.Ledger) *ValidationError
}

// ValidationError describes why a description failed validation.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool // whether regenerating is likely to fix it
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
