// Package bundle serializes a compiled scenario (graph, grading config and
// conclusion texts) into a self-contained JSON document, and loads it back.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"github.com/abhisek/edquest/internal/graph"
	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/scenario"
)

// FormatVersion is written into every bundle. Bundles with a different
// major version are rejected.
const FormatVersion = "v1.0.0"

// Scenario is a playable compiled scenario.
type Scenario struct {
	ID         string
	Title      string
	Theme      string
	Source     string
	CreatedAt  time.Time
	Conclusion scenario.Conclusion
	Graph      *graph.Graph
	Ledger     *ledger.Ledger
}

// New wraps a compiled graph with a fresh upper-case UUID.
func New(title string, g *graph.Graph, l *ledger.Ledger, conclusion scenario.Conclusion) *Scenario {
	return &Scenario{
		ID:         strings.ToUpper(uuid.NewString()),
		Title:      title,
		CreatedAt:  time.Now().UTC(),
		Conclusion: conclusion,
		Graph:      g,
		Ledger:     l,
	}
}

type document struct {
	FormatVersion string              `json:"format_version"`
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Theme         string              `json:"theme,omitempty"`
	Source        string              `json:"source,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Start         string              `json:"start"`
	Grading       gradingConfig       `json:"grading"`
	Conclusion    scenario.Conclusion `json:"conclusion"`
	Passages      []passage           `json:"passages"`
}

type gradingConfig struct {
	Enabled          bool             `json:"enabled"`
	Concepts         []ledger.Concept `json:"concepts"`
	ConceptPoints    map[string]int   `json:"concept_points"`
	PassingThreshold int              `json:"passing_threshold"`
	TotalPoints      int              `json:"total_points"`
	PassingPoints    int              `json:"passing_points"`
}

type passage struct {
	Address      string     `json:"address"`
	Kind         graph.Kind `json:"kind"`
	Title        string     `json:"title,omitempty"`
	Text         string     `json:"text,omitempty"`
	Prompt       string     `json:"prompt,omitempty"`
	Choices      []choice   `json:"choices,omitempty"`
	Target       string     `json:"target,omitempty"`
	ConceptIndex int        `json:"concept_index,omitempty"`
	Concept      string     `json:"concept,omitempty"`
	ScorePercent *int       `json:"score_percent,omitempty"`
	Narrative    string     `json:"narrative,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
}

type choice struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// Marshal encodes s as indented JSON.
func Marshal(s *Scenario) ([]byte, error) {
	doc := document{
		FormatVersion: FormatVersion,
		ID:            s.ID,
		Title:         s.Title,
		Theme:         s.Theme,
		Source:        s.Source,
		CreatedAt:     s.CreatedAt,
		Start:         s.Graph.Start(),
		Conclusion:    s.Conclusion,
		Grading: gradingConfig{
			Enabled:          true,
			Concepts:         s.Ledger.Concepts(),
			ConceptPoints:    make(map[string]int, s.Ledger.Len()),
			PassingThreshold: s.Ledger.PassingThreshold(),
			TotalPoints:      s.Ledger.TotalPoints(),
			PassingPoints:    s.Ledger.PassingPoints(),
		},
	}
	for _, c := range doc.Grading.Concepts {
		doc.Grading.ConceptPoints[c.Name] = c.Points
	}

	for _, addr := range s.Graph.Addresses() {
		n, _ := s.Graph.Node(addr)
		p := passage{Address: addr, Kind: n.Kind()}
		switch n := n.(type) {
		case *graph.Situation:
			p.Title, p.Text, p.Prompt = n.Title, n.Text, n.Prompt
			for _, c := range n.Choices {
				p.Choices = append(p.Choices, choice{Label: c.Label, Target: c.Target})
			}
		case *graph.Transition:
			p.Title, p.Text, p.Target = n.Title, n.Text, n.Target
		case *graph.Outcome:
			pct := n.ScorePercent
			p.Title, p.Narrative, p.Feedback = n.Title, n.Narrative, n.Feedback
			p.ConceptIndex, p.Concept, p.ScorePercent, p.Target = n.ConceptIndex, n.Concept, &pct, n.Next
		}
		doc.Passages = append(doc.Passages, p)
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes and fully re-validates a bundle.
func Unmarshal(data []byte) (*Scenario, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if !semver.IsValid(doc.FormatVersion) {
		return nil, fmt.Errorf("bundle format version %q is not a semantic version", doc.FormatVersion)
	}
	if semver.Major(doc.FormatVersion) != semver.Major(FormatVersion) {
		return nil, fmt.Errorf("bundle format %s is not compatible with %s", doc.FormatVersion, FormatVersion)
	}

	l, err := ledger.New(doc.Grading.Concepts, doc.Grading.PassingThreshold)
	if err != nil {
		return nil, err
	}
	if doc.Grading.TotalPoints != 0 && doc.Grading.TotalPoints != l.TotalPoints() {
		return nil, fmt.Errorf("bundle grading total %d does not match concept points %d", doc.Grading.TotalPoints, l.TotalPoints())
	}

	b := graph.NewBuilder()
	for _, p := range doc.Passages {
		n, err := p.node()
		if err != nil {
			return nil, err
		}
		if err := b.Add(p.Address, n); err != nil {
			return nil, err
		}
	}
	g, err := b.Build(doc.Start)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, l.Len())
	for _, c := range l.Concepts() {
		names = append(names, c.Name)
	}
	if err := g.Validate(names); err != nil {
		return nil, err
	}

	return &Scenario{
		ID:         doc.ID,
		Title:      doc.Title,
		Theme:      doc.Theme,
		Source:     doc.Source,
		CreatedAt:  doc.CreatedAt,
		Conclusion: doc.Conclusion,
		Graph:      g,
		Ledger:     l,
	}, nil
}

func (p passage) node() (graph.Node, error) {
	switch p.Kind {
	case graph.KindSituation:
		s := &graph.Situation{Title: p.Title, Text: p.Text, Prompt: p.Prompt}
		for _, c := range p.Choices {
			s.Choices = append(s.Choices, graph.Choice{Label: c.Label, Target: c.Target})
		}
		return s, nil
	case graph.KindTransition:
		return &graph.Transition{Title: p.Title, Text: p.Text, Target: p.Target}, nil
	case graph.KindOutcome:
		if p.ScorePercent == nil {
			return nil, fmt.Errorf("outcome %q has no score_percent", p.Address)
		}
		return &graph.Outcome{
			ConceptIndex: p.ConceptIndex,
			Concept:      p.Concept,
			ScorePercent: graph.ClampPercent(*p.ScorePercent),
			Title:        p.Title,
			Narrative:    p.Narrative,
			Feedback:     p.Feedback,
			Next:         p.Target,
		}, nil
	default:
		return nil, fmt.Errorf("passage %q has unknown kind %q", p.Address, p.Kind)
	}
}

// WriteFile marshals s to path.
func WriteFile(path string, s *Scenario) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a bundle from path.
func ReadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
