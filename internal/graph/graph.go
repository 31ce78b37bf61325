package graph

import "fmt"

// Graph is an immutable address → node mapping with a start address.
type Graph struct {
	nodes map[string]Node
	order []string
	start string
}

// Builder accumulates nodes. It is not safe for concurrent use.
type Builder struct {
	nodes map[string]Node
	order []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[string]Node)}
}

// Add registers n at addr. Reusing an address is a DuplicateAddress error.
func (b *Builder) Add(addr string, n Node) error {
	if addr == "" {
		return &GraphError{Kind: DanglingReference, Message: "empty address"}
	}
	if _, ok := b.nodes[addr]; ok {
		return &GraphError{Kind: DuplicateAddress, Address: addr}
	}
	b.nodes[addr] = n
	b.order = append(b.order, addr)
	return nil
}

// Has reports whether addr was added.
func (b *Builder) Has(addr string) bool {
	_, ok := b.nodes[addr]
	return ok
}

// Build freezes the builder into a Graph and validates its edges. The
// builder must not be used afterwards.
func (b *Builder) Build(start string) (*Graph, error) {
	g := &Graph{nodes: b.nodes, order: b.order, start: start}
	if err := g.checkEdges(); err != nil {
		return nil, err
	}
	b.nodes, b.order = nil, nil
	return g, nil
}

// Start returns the start address.
func (g *Graph) Start() string { return g.start }

// Node looks up the node at addr. The result is a copy; changing it does
// not affect the graph.
func (g *Graph) Node(addr string) (Node, bool) {
	n, ok := g.nodes[addr]
	if !ok {
		return nil, false
	}
	return clone(n), true
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Addresses returns all addresses in insertion order.
func (g *Graph) Addresses() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// checkEdges verifies the start node exists, every edge resolves and only
// the Results node is a situation without choices.
func (g *Graph) checkEdges() error {
	if _, ok := g.nodes[g.start]; !ok {
		return &GraphError{Kind: DanglingReference, Ref: g.start, Message: "start address not in graph"}
	}
	for _, addr := range g.order {
		n := g.nodes[addr]
		if s, ok := n.(*Situation); ok && len(s.Choices) == 0 && addr != ResultsAddress {
			return &GraphError{Kind: DeadEnd, Address: addr, Message: "situation offers no choices"}
		}
		for _, target := range n.Targets() {
			if _, ok := g.nodes[target]; !ok {
				return &GraphError{Kind: DanglingReference, Address: addr, Ref: target}
			}
		}
	}
	return nil
}

// Reachable returns every address reachable from start.
func (g *Graph) Reachable() map[string]bool {
	seen := map[string]bool{g.start: true}
	stack := []string{g.start}
	for len(stack) > 0 {
		addr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := g.nodes[addr]
		if !ok {
			continue
		}
		for _, t := range n.Targets() {
			if !seen[t] {
				seen[t] = true
				stack = append(stack, t)
			}
		}
	}
	return seen
}

// Outcomes returns copies of the reachable outcomes for a 1-based concept
// index, in address order.
func (g *Graph) Outcomes(conceptIndex int) []*Outcome {
	return g.outcomes(conceptIndex, g.Reachable())
}

func (g *Graph) outcomes(conceptIndex int, reach map[string]bool) []*Outcome {
	var out []*Outcome
	for _, addr := range g.order {
		if o, ok := g.nodes[addr].(*Outcome); ok && o.ConceptIndex == conceptIndex && reach[addr] {
			c := *o
			out = append(out, &c)
		}
	}
	return out
}

// Validate checks edges and that each of the concepts (1-based, in ledger
// order) has at least one reachable outcome.
func (g *Graph) Validate(concepts []string) error {
	if err := g.checkEdges(); err != nil {
		return err
	}
	reach := g.Reachable()
	for i, name := range concepts {
		if len(g.outcomes(i+1, reach)) == 0 {
			return &GraphError{
				Kind:    NoEndingsForConcept,
				Concept: name,
				Message: fmt.Sprintf("no reachable outcome for concept %d", i+1),
			}
		}
	}
	return nil
}
