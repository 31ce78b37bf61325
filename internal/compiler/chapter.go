package compiler

import (
	"fmt"
	"strings"

	"github.com/abhisek/edquest/internal/graph"
	"github.com/abhisek/edquest/internal/scenario"
)

// chapterLowering walks one concept's branch tree into the shared builder.
type chapterLowering struct {
	shuffle    Shuffler
	b          *graph.Builder
	index      int
	concept    string
	tree       *scenario.BranchTree
	resolution string
	next       string

	nodes    map[string]*scenario.TreeNode
	visited  map[string]bool
	scores   []int
	warnings []Warning
}

// indexNodes maps local IDs to nodes and resolves the root. An empty root
// means the first node.
func (lw *chapterLowering) indexNodes() (string, error) {
	lw.nodes = make(map[string]*scenario.TreeNode, len(lw.tree.Nodes))
	lw.visited = make(map[string]bool, len(lw.tree.Nodes))
	for i := range lw.tree.Nodes {
		n := &lw.tree.Nodes[i]
		if n.ID == "" {
			return "", &graph.GraphError{Kind: graph.DanglingReference, Concept: lw.concept, Message: fmt.Sprintf("tree node %d has no id", i+1)}
		}
		if _, dup := lw.nodes[n.ID]; dup {
			return "", &graph.GraphError{Kind: graph.DuplicateAddress, Concept: lw.concept, Address: NodeAddress(lw.index, n.ID)}
		}
		lw.nodes[n.ID] = n
	}

	root := lw.tree.Root
	if root == "" {
		root = lw.tree.Nodes[0].ID
	}
	if _, ok := lw.nodes[root]; !ok {
		return "", &graph.GraphError{Kind: graph.DanglingReference, Concept: lw.concept, Address: EntryAddress(lw.index), Ref: root}
	}
	return root, nil
}

func (lw *chapterLowering) lower(root string) error {
	if err := lw.visit(root); err != nil {
		return err
	}
	if len(lw.scores) == 0 {
		return &graph.GraphError{Kind: graph.NoEndingsForConcept, Concept: lw.concept, Message: "no ending is reachable from the chapter root"}
	}

	for _, n := range lw.tree.Nodes {
		if lw.visited[n.ID] {
			continue
		}
		kind := UnreachableNode
		if n.IsEnding {
			kind = UnreachableEnding
		}
		lw.warnings = append(lw.warnings, Warning{Kind: kind, Concept: lw.concept, Ref: n.ID, Message: "not reachable from the chapter root"})
	}

	uniform := true
	for _, s := range lw.scores[1:] {
		if s != lw.scores[0] {
			uniform = false
			break
		}
	}
	if uniform {
		lw.warnings = append(lw.warnings, Warning{
			Kind:    UniformOutcomes,
			Concept: lw.concept,
			Message: fmt.Sprintf("every reachable ending scores %d%%", lw.scores[0]),
		})
	}
	return nil
}

func (lw *chapterLowering) visit(id string) error {
	if lw.visited[id] {
		return nil
	}
	lw.visited[id] = true
	n := lw.nodes[id]
	addr := NodeAddress(lw.index, id)

	if n.IsEnding {
		pct := graph.ClampPercent(n.ScorePercent)
		if pct != n.ScorePercent {
			lw.warnings = append(lw.warnings, Warning{Kind: ScoreClamped, Concept: lw.concept, Ref: id, Message: fmt.Sprintf("score %d clamped to %d", n.ScorePercent, pct)})
		}
		lw.scores = append(lw.scores, pct)
		title := n.Title
		if title == "" {
			title = outcomeTitle(pct)
		}
		return withConcept(lw.b.Add(addr, &graph.Outcome{
			ConceptIndex: lw.index,
			Concept:      lw.concept,
			ScorePercent: pct,
			Title:        title,
			Narrative:    joinText(n.Narrative, lw.resolution),
			Feedback:     n.Feedback,
			Next:         lw.next,
		}), lw.concept)
	}

	if len(n.Choices) == 0 {
		return &graph.GraphError{Kind: graph.DeadEnd, Concept: lw.concept, Address: addr, Message: "decision has no choices"}
	}

	// Edges are resolved in authored order so addresses never depend on
	// the shuffle.
	targets := make([]string, len(n.Choices))
	var waypoints []int
	for k, ch := range n.Choices {
		if _, ok := lw.nodes[ch.LeadsTo]; !ok {
			return &graph.GraphError{Kind: graph.DanglingReference, Concept: lw.concept, Address: addr, Ref: ch.LeadsTo}
		}
		targets[k] = NodeAddress(lw.index, ch.LeadsTo)
		if strings.TrimSpace(ch.Transition) != "" {
			waypoints = append(waypoints, k)
		}
	}

	perm := lw.shuffle.Perm(len(n.Choices))
	if !validPerm(perm, len(n.Choices)) {
		return fmt.Errorf("compiler: shuffler returned %v, not a permutation of %d choices", perm, len(n.Choices))
	}

	display := func(k int) string {
		if strings.TrimSpace(n.Choices[k].Transition) != "" {
			return TransitionAddress(lw.index, id, k)
		}
		return targets[k]
	}
	choices := make([]graph.Choice, len(perm))
	for pos, k := range perm {
		label := strings.TrimSpace(n.Choices[k].Text)
		if label == "" {
			label = "Take action"
		}
		choices[pos] = graph.Choice{Label: label, Target: display(k)}
	}
	if err := lw.b.Add(addr, &graph.Situation{Text: n.Situation, Prompt: n.Prompt, Choices: choices}); err != nil {
		return withConcept(err, lw.concept)
	}

	for _, k := range waypoints {
		t := &graph.Transition{Text: strings.TrimSpace(n.Choices[k].Transition), Target: targets[k]}
		if err := lw.b.Add(TransitionAddress(lw.index, id, k), t); err != nil {
			return withConcept(err, lw.concept)
		}
	}

	for _, ch := range n.Choices {
		if err := lw.visit(ch.LeadsTo); err != nil {
			return err
		}
	}
	return nil
}

func withConcept(err error, concept string) error {
	if gerr, ok := err.(*graph.GraphError); ok && gerr.Concept == "" {
		gerr.Concept = concept
	}
	return err
}
