package graph

import "fmt"

// ErrorKind classifies a construction failure.
type ErrorKind string

const (
	DanglingReference   ErrorKind = "dangling_reference"
	NoEndingsForConcept ErrorKind = "no_endings_for_concept"
	DuplicateAddress    ErrorKind = "duplicate_address"
	DeadEnd             ErrorKind = "dead_end"
)

// GraphError is a fatal compile or load failure. No partial graph is ever
// returned alongside it.
type GraphError struct {
	Kind    ErrorKind
	Concept string
	Address string
	Ref     string
	Message string
}

func (e *GraphError) Error() string {
	msg := fmt.Sprintf("graph %s", e.Kind)
	if e.Concept != "" {
		msg += fmt.Sprintf(" in concept %q", e.Concept)
	}
	if e.Address != "" {
		msg += fmt.Sprintf(" at %s", e.Address)
	}
	if e.Ref != "" {
		msg += fmt.Sprintf(" (ref %q)", e.Ref)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}
