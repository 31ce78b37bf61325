// Package compiler lowers a scenario description into a passage graph.
//
// Each ledger concept becomes a chapter: an entry transition, the chapter's
// branch tree walked depth-first from its root, and outcome nodes that link
// to the next chapter's entry (or to Results after the last concept).
// Legacy linear chains are first rewritten into an equivalent tree.
package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/edquest/internal/graph"
	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/logging"
	"github.com/abhisek/edquest/internal/scenario"
)

// Result is a compiled graph together with non-fatal findings.
type Result struct {
	Graph    *graph.Graph
	Warnings []Warning
}

// Compiler is stateless apart from its shuffler and is safe for concurrent
// use when the shuffler is.
type Compiler struct {
	shuffle Shuffler
	logger  *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithShuffler sets the choice-order source.
func WithShuffler(s Shuffler) Option {
	return func(c *Compiler) { c.shuffle = s }
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// New creates a Compiler that shuffles choices with math/rand/v2.
func New(opts ...Option) *Compiler {
	c := &Compiler{shuffle: globalShuffler{}}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = logging.New("compiler")
	}
	return c
}

// Compile lowers d against l. Any returned error is a *graph.GraphError or
// *ledger.ConfigError unless the shuffler misbehaves.
func (c *Compiler) Compile(l *ledger.Ledger, d *scenario.Description) (*Result, error) {
	return c.compile(l, d, c.shuffle)
}

func (c *Compiler) compile(l *ledger.Ledger, d *scenario.Description, shuffle Shuffler) (*Result, error) {
	if l == nil || l.Len() == 0 {
		return nil, &ledger.ConfigError{Kind: ledger.EmptyLedger, Message: "compile requires a ledger"}
	}
	if d == nil {
		d = &scenario.Description{}
	}

	var warnings []Warning
	seen := make(map[string]int, len(d.Chapters))
	for _, ch := range d.Chapters {
		seen[ch.Concept]++
		if l.Index(ch.Concept) == 0 {
			warnings = append(warnings, Warning{Kind: ExtraChapter, Concept: ch.Concept, Message: "chapter concept is not in the ledger; ignored"})
		}
	}

	b := graph.NewBuilder()
	if err := b.Add(graph.StartAddress, startNode(l, d)); err != nil {
		return nil, err
	}

	concepts := l.Concepts()
	names := make([]string, len(concepts))
	for i, concept := range concepts {
		idx := i + 1
		names[i] = concept.Name

		ch, ok := d.ChapterFor(concept.Name)
		if !ok {
			return nil, &graph.GraphError{Kind: graph.NoEndingsForConcept, Concept: concept.Name, Message: "no chapter describes this concept"}
		}
		if seen[concept.Name] > 1 {
			return nil, &graph.GraphError{Kind: graph.DuplicateAddress, Concept: concept.Name, Address: EntryAddress(idx), Message: "concept has more than one chapter"}
		}

		tree := ch.Tree
		if !ch.HasTree() {
			if len(ch.Steps) == 0 {
				return nil, &graph.GraphError{Kind: graph.NoEndingsForConcept, Concept: concept.Name, Message: "chapter has neither a branch tree nor decisions"}
			}
			var chainWarnings []Warning
			tree, chainWarnings = treeFromChain(concept.Name, ch.Steps)
			warnings = append(warnings, chainWarnings...)
		}

		next := graph.ResultsAddress
		if idx < len(concepts) {
			next = EntryAddress(idx + 1)
		}
		lw := &chapterLowering{
			shuffle:    shuffle,
			b:          b,
			index:      idx,
			concept:    concept.Name,
			tree:       tree,
			resolution: ch.Resolution,
			next:       next,
		}
		root, err := lw.indexNodes()
		if err != nil {
			return nil, err
		}
		if err := b.Add(EntryAddress(idx), chapterEntry(idx, ch, NodeAddress(idx, root))); err != nil {
			return nil, err
		}
		if err := lw.lower(root); err != nil {
			return nil, err
		}
		warnings = append(warnings, lw.warnings...)
	}

	if err := b.Add(graph.ResultsAddress, &graph.Situation{Title: "Results"}); err != nil {
		return nil, err
	}
	g, err := b.Build(graph.StartAddress)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(names); err != nil {
		return nil, err
	}

	for _, w := range warnings {
		c.logger.Warn("scenario compile warning", "kind", string(w.Kind), "concept", w.Concept, "ref", w.Ref, "detail", w.Message)
	}
	c.logger.Debug("scenario compiled", "title", d.Title, "nodes", g.Len(), "concepts", len(concepts), "warnings", len(warnings))

	return &Result{Graph: g, Warnings: warnings}, nil
}

func startNode(l *ledger.Ledger, d *scenario.Description) *graph.Situation {
	title := d.Title
	if title == "" {
		title = "Scenario"
	}

	var sb strings.Builder
	intro := d.Introduction
	for _, part := range []string{intro.Situation, intro.Role} {
		if part != "" {
			sb.WriteString(part)
			sb.WriteString("\n\n")
		}
	}
	if intro.Stakes != "" {
		fmt.Fprintf(&sb, "Stakes: %s\n\n", intro.Stakes)
	}
	sb.WriteString("Concepts:\n")
	for _, c := range l.Concepts() {
		fmt.Fprintf(&sb, "  - %s (%d pts)\n", c.Name, c.Points)
	}
	fmt.Fprintf(&sb, "\nPassing score: %d%% (%d of %d points)", l.PassingThreshold(), l.PassingPoints(), l.TotalPoints())

	return &graph.Situation{
		Title:   title,
		Text:    sb.String(),
		Choices: []graph.Choice{{Label: "Begin", Target: EntryAddress(1)}},
	}
}

func chapterEntry(idx int, ch *scenario.Chapter, root string) *graph.Transition {
	title := ch.Title
	if title == "" {
		title = ch.Concept
	}
	text := ch.Setup
	if text == "" {
		text = fmt.Sprintf("This chapter tests %s.", ch.Concept)
	}
	return &graph.Transition{
		Title:  fmt.Sprintf("Chapter %d: %s", idx, title),
		Text:   text,
		Target: root,
	}
}

// outcomeTitle is used for endings that carry no title of their own.
func outcomeTitle(pct int) string {
	switch {
	case pct >= 80:
		return "Well done!"
	case pct > 0:
		return "Partially correct."
	default:
		return "Not quite right."
	}
}

func joinText(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
