package ledger

import "fmt"

// ConfigErrorKind classifies a malformed ledger.
type ConfigErrorKind string

const (
	EmptyLedger      ConfigErrorKind = "empty_ledger"
	InvalidConcept   ConfigErrorKind = "invalid_concept"
	InvalidPoints    ConfigErrorKind = "invalid_points"
	DuplicateConcept ConfigErrorKind = "duplicate_concept"
	InvalidThreshold ConfigErrorKind = "invalid_threshold"
)

// ConfigError is returned when a ledger cannot be built. It is fatal: no
// compilation starts from a malformed ledger.
type ConfigError struct {
	Kind    ConfigErrorKind
	Concept string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Concept != "" {
		return fmt.Sprintf("ledger %s: concept %q: %s", e.Kind, e.Concept, e.Message)
	}
	return fmt.Sprintf("ledger %s: %s", e.Kind, e.Message)
}
