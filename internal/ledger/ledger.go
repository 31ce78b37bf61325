// Package ledger holds the concept → points mapping that every compiled
// scenario and every playthrough is graded against.
package ledger

import "fmt"

// DefaultPoints is the point value given to a concept entry that names no
// points of its own.
const DefaultPoints = 10

// DefaultThreshold is the passing threshold used when none is configured.
const DefaultThreshold = 70

// Concept is a gradable learning unit.
type Concept struct {
	Name   string `json:"name" yaml:"name"`
	Points int    `json:"points" yaml:"points"`
}

// Ledger is an ordered, immutable list of concepts plus the passing
// threshold. Concept order assigns concept indices (1-based).
type Ledger struct {
	concepts  []Concept
	byName    map[string]int
	total     int
	threshold int
}

// New validates concepts and threshold and builds a Ledger.
func New(concepts []Concept, threshold int) (*Ledger, error) {
	if len(concepts) == 0 {
		return nil, &ConfigError{Kind: EmptyLedger, Message: "at least one concept is required"}
	}
	if threshold < 0 || threshold > 100 {
		return nil, &ConfigError{Kind: InvalidThreshold, Message: fmt.Sprintf("passing threshold %d is outside 0-100", threshold)}
	}

	l := &Ledger{
		concepts:  make([]Concept, len(concepts)),
		byName:    make(map[string]int, len(concepts)),
		threshold: threshold,
	}
	for i, c := range concepts {
		if c.Name == "" {
			return nil, &ConfigError{Kind: InvalidConcept, Message: fmt.Sprintf("concept %d has no name", i+1)}
		}
		if c.Points <= 0 {
			return nil, &ConfigError{Kind: InvalidPoints, Concept: c.Name, Message: fmt.Sprintf("points must be positive, got %d", c.Points)}
		}
		if _, dup := l.byName[c.Name]; dup {
			return nil, &ConfigError{Kind: DuplicateConcept, Concept: c.Name, Message: "concept names must be unique"}
		}
		l.concepts[i] = c
		l.byName[c.Name] = i + 1
		l.total += c.Points
	}
	return l, nil
}

// Concepts returns a copy of the concepts in ledger order.
func (l *Ledger) Concepts() []Concept {
	out := make([]Concept, len(l.concepts))
	copy(out, l.concepts)
	return out
}

// Len returns the number of concepts.
func (l *Ledger) Len() int { return len(l.concepts) }

// Concept returns the concept at 1-based index i.
func (l *Ledger) Concept(i int) (Concept, bool) {
	if i < 1 || i > len(l.concepts) {
		return Concept{}, false
	}
	return l.concepts[i-1], true
}

// Index returns the 1-based index of the named concept, or 0.
func (l *Ledger) Index(name string) int {
	return l.byName[name]
}

// Points returns the point value of the named concept, or 0.
func (l *Ledger) Points(name string) int {
	if i := l.byName[name]; i > 0 {
		return l.concepts[i-1].Points
	}
	return 0
}

// TotalPoints is the sum of all concept points.
func (l *Ledger) TotalPoints() int { return l.total }

// PassingThreshold is the passing percentage (0-100).
func (l *Ledger) PassingThreshold() int { return l.threshold }

// PassingPoints is floor(total × threshold / 100).
func (l *Ledger) PassingPoints() int {
	return l.total * l.threshold / 100
}
