// Package playback interprets a compiled passage graph for one player:
// current node, visited history and the per-concept score record.
//
// An Engine is not safe for concurrent use; it belongs to one UI loop.
package playback

import (
	"fmt"

	"github.com/abhisek/edquest/internal/graph"
	"github.com/abhisek/edquest/internal/ledger"
)

// ConceptScore is the score record of one concept. Earned and ScorePercent
// are fixed at the first outcome reached for the concept.
type ConceptScore struct {
	Concept      string
	Points       int
	Earned       int
	ScorePercent int
	Answered     bool
	Attempts     int
}

// ScoreRecord maps concept name to its score.
type ScoreRecord map[string]ConceptScore

// Engine holds one playthrough.
type Engine struct {
	g *graph.Graph
	l *ledger.Ledger

	started bool
	current string
	history []string
	scores  ScoreRecord
	total   int
}

// New checks that g is playable against l and returns an engine in the
// not-started state.
func New(g *graph.Graph, l *ledger.Ledger) (*Engine, error) {
	concepts := l.Concepts()
	names := make([]string, len(concepts))
	for i, c := range concepts {
		names[i] = c.Name
	}
	if err := g.Validate(names); err != nil {
		return nil, err
	}
	for _, addr := range g.Addresses() {
		n, _ := g.Node(addr)
		o, ok := n.(*graph.Outcome)
		if !ok {
			continue
		}
		c, ok := l.Concept(o.ConceptIndex)
		if !ok || c.Name != o.Concept {
			return nil, &graph.GraphError{
				Kind:    graph.DanglingReference,
				Address: addr,
				Ref:     o.Concept,
				Message: fmt.Sprintf("outcome concept %d does not match the ledger", o.ConceptIndex),
			}
		}
	}
	return &Engine{g: g, l: l}, nil
}

// Start shows the start node with an empty history and a fresh score
// record.
func (e *Engine) Start() {
	e.started = true
	e.current = e.g.Start()
	e.history = []string{e.current}
	e.total = 0
	e.scores = make(ScoreRecord, e.l.Len())
	for _, c := range e.l.Concepts() {
		e.scores[c.Name] = ConceptScore{Concept: c.Name, Points: c.Points}
	}
}

// Restart is Start from any state.
func (e *Engine) Restart() { e.Start() }

// Started reports whether Start has been called.
func (e *Engine) Started() bool { return e.started }

// Current returns the current address and node. Before Start both are
// zero.
func (e *Engine) Current() (string, graph.Node) {
	if !e.started {
		return "", nil
	}
	n, _ := e.g.Node(e.current)
	return e.current, n
}

// Finished reports whether the Results node is showing.
func (e *Engine) Finished() bool {
	return e.started && e.current == graph.ResultsAddress
}

// CanBack reports whether Back would succeed.
func (e *Engine) CanBack() bool {
	return e.started && !e.Finished() && len(e.history) > 1
}

// Choose follows choice index of the situation at address. address must
// be the current address.
func (e *Engine) Choose(address string, index int) error {
	if !e.started {
		return &EngineError{Kind: NotStarted, Address: address, Index: index}
	}
	if address != e.current {
		return &EngineError{Kind: InvalidChoice, Address: address, Index: index, Message: fmt.Sprintf("current node is %q", e.current)}
	}
	_, n := e.Current()
	sit, ok := n.(*graph.Situation)
	if !ok {
		return &EngineError{Kind: InvalidChoice, Address: address, Index: index, Message: fmt.Sprintf("%s node has no choices", n.Kind())}
	}
	if index < 0 || index >= len(sit.Choices) {
		return &EngineError{Kind: InvalidChoice, Address: address, Index: index, Message: fmt.Sprintf("%d choices available", len(sit.Choices))}
	}
	e.advance(sit.Choices[index].Target)
	return nil
}

// Continue follows the single edge of the current transition or outcome.
func (e *Engine) Continue() error {
	if !e.started {
		return &EngineError{Kind: NotStarted}
	}
	_, n := e.Current()
	switch n := n.(type) {
	case *graph.Transition:
		e.advance(n.Target)
	case *graph.Outcome:
		e.advance(n.Next)
	default:
		kind := NotWaypoint
		if e.Finished() {
			kind = Finished
		}
		return &EngineError{Kind: kind, Address: e.current, Message: "nothing to continue to"}
	}
	return nil
}

// Back returns to the previous node without touching the score record.
func (e *Engine) Back() error {
	if !e.started {
		return &EngineError{Kind: NotStarted}
	}
	if e.Finished() {
		return &EngineError{Kind: Finished, Address: e.current, Message: "results only offer restart"}
	}
	if len(e.history) <= 1 {
		return &EngineError{Kind: NoHistory, Address: e.current}
	}
	e.history = e.history[:len(e.history)-1]
	e.current = e.history[len(e.history)-1]
	return nil
}

func (e *Engine) advance(target string) {
	if e.history[len(e.history)-1] != target {
		e.history = append(e.history, target)
	}
	e.current = target

	n, _ := e.g.Node(target)
	if o, ok := n.(*graph.Outcome); ok {
		e.record(o)
	}
}

// record applies first-attempt scoring. Later arrivals only count attempts.
func (e *Engine) record(o *graph.Outcome) {
	cs := e.scores[o.Concept]
	cs.Attempts++
	if !cs.Answered {
		cs.Answered = true
		cs.ScorePercent = o.ScorePercent
		cs.Earned = cs.Points * o.ScorePercent / 100
		e.total += cs.Earned
	}
	e.scores[o.Concept] = cs
}

// History returns the visited addresses, oldest first.
func (e *Engine) History() []string {
	out := make([]string, len(e.history))
	copy(out, e.history)
	return out
}

// Scores returns a copy of the score record.
func (e *Engine) Scores() ScoreRecord {
	out := make(ScoreRecord, len(e.scores))
	for k, v := range e.scores {
		out[k] = v
	}
	return out
}

// TotalEarned is the running total of first-attempt points.
func (e *Engine) TotalEarned() int { return e.total }

// Graph returns the graph being played.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Ledger returns the ledger scores are kept against.
func (e *Engine) Ledger() *ledger.Ledger { return e.l }
