// Package graph is the compiled, immutable passage graph: every node has a
// stable address and is one of three kinds.
package graph

// Reserved addresses.
const (
	StartAddress   = "Start"
	ResultsAddress = "Results"
)

// Kind identifies the concrete type of a Node.
type Kind string

const (
	KindSituation  Kind = "situation"
	KindTransition Kind = "transition"
	KindOutcome    Kind = "outcome"
)

// Node is implemented by *Situation, *Transition and *Outcome only.
type Node interface {
	Kind() Kind
	// Targets lists outgoing edges in display order.
	Targets() []string
	node()
}

// Choice is a labelled edge out of a Situation.
type Choice struct {
	Label  string
	Target string
}

// Situation is a decision point. The Results node is a Situation with no
// choices.
type Situation struct {
	Title   string
	Text    string
	Prompt  string
	Choices []Choice
}

// Transition is a display-only waypoint with one outgoing edge.
type Transition struct {
	Title  string
	Text   string
	Target string
}

// Outcome ends a chapter and carries the score for its concept.
type Outcome struct {
	ConceptIndex int
	Concept      string
	ScorePercent int
	Title        string
	Narrative    string
	Feedback     string
	Next         string
}

func (*Situation) Kind() Kind  { return KindSituation }
func (*Transition) Kind() Kind { return KindTransition }
func (*Outcome) Kind() Kind    { return KindOutcome }

func (s *Situation) Targets() []string {
	out := make([]string, len(s.Choices))
	for i, c := range s.Choices {
		out[i] = c.Target
	}
	return out
}

func (t *Transition) Targets() []string { return []string{t.Target} }
func (o *Outcome) Targets() []string    { return []string{o.Next} }

func (*Situation) node()  {}
func (*Transition) node() {}
func (*Outcome) node()    {}

func clone(n Node) Node {
	switch n := n.(type) {
	case *Situation:
		c := *n
		c.Choices = append([]Choice(nil), n.Choices...)
		return &c
	case *Transition:
		c := *n
		return &c
	case *Outcome:
		c := *n
		return &c
	}
	return n
}

// ClampPercent limits p to [0, 100].
func ClampPercent(p int) int {
	return max(0, min(100, p))
}
