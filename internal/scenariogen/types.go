// Package scenariogen turns a generation request (theme, objectives, key
// concepts and source material) into a scenario description, either with an
// LLM or from a deterministic template.
package scenariogen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/scenario"
)

// Generator produces a scenario description for a request.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*scenario.Description, error)
}

const (
	DefaultDecisionNodes   = 4
	DefaultBranchesPerNode = 3
)

// Request describes what to generate. It is read from YAML or JSON.
type Request struct {
	Theme              string         `yaml:"theme"`
	LearningObjectives []string       `yaml:"learning_objectives"`
	KeyConcepts        []ledger.Entry `yaml:"key_concepts"`
	DefaultPoints      int            `yaml:"default_points"`
	PassingThreshold   *int           `yaml:"passing_threshold"`
	DecisionNodes      int            `yaml:"decision_nodes"`
	BranchesPerNode    int            `yaml:"branches_per_node"`

	// SourceContent is free text; Sources are combined after it.
	SourceContent string          `yaml:"source_content"`
	Sources       []ContentSource `yaml:"content_sources"`
	CaseStudy     *CaseStudy      `yaml:"case_study"`
}

// ContentSource is one piece of supplementary material. Type is "text" or
// "file"; file sources are read by LoadRequest.
type ContentSource struct {
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Path    string `yaml:"path"`
}

// CaseStudy is a primary source the scenario is built around.
type CaseStudy struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// Ledger builds the concept ledger the request describes.
func (r *Request) Ledger() (*ledger.Ledger, error) {
	threshold := ledger.DefaultThreshold
	if r.PassingThreshold != nil {
		threshold = *r.PassingThreshold
	}
	return ledger.FromEntries(r.KeyConcepts, r.DefaultPoints, threshold)
}

// Title is the scenario title derived from the theme.
func (r *Request) Title() string {
	if r.Theme == "" {
		return "EdQuest"
	}
	return "EdQuest: " + r.Theme
}

func (r *Request) decisionNodes() int {
	if r.DecisionNodes <= 0 {
		return DefaultDecisionNodes
	}
	return r.DecisionNodes
}

func (r *Request) branchesPerNode() int {
	if r.BranchesPerNode <= 0 {
		return DefaultBranchesPerNode
	}
	return r.BranchesPerNode
}

// SourceText combines the free text and every non-empty source into one
// document, each source under a "--- SOURCE: <title> ---" header.
func (r *Request) SourceText() string {
	var parts []string
	if s := strings.TrimSpace(r.SourceContent); s != "" {
		parts = append(parts, s)
	}
	for _, src := range r.Sources {
		if src.Content == "" {
			continue
		}
		title := src.Title
		if title == "" {
			title = "Untitled"
		}
		parts = append(parts, fmt.Sprintf("--- SOURCE: %s ---\n%s", title, src.Content))
	}
	return strings.Join(parts, "\n\n")
}

// DecodeRequest parses a YAML or JSON request.
func DecodeRequest(data []byte) (*Request, error) {
	var r Request
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &r, nil
}

// LoadRequest reads a request file and inlines file sources, resolving
// relative paths against the request's directory.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	r, err := DecodeRequest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range r.Sources {
		src := &r.Sources[i]
		if src.Type != "file" || src.Content != "" || src.Path == "" {
			continue
		}
		p := src.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read source %q: %w", src.Path, err)
		}
		src.Content = string(body)
		if src.Title == "" {
			src.Title = filepath.Base(src.Path)
		}
	}
	return r, nil
}

// DemoRequest is the built-in sample request.
func DemoRequest() *Request {
	threshold := ledger.DefaultThreshold
	return &Request{
		Theme: "Healthcare/Clinical Setting",
		LearningObjectives: []string{
			"Apply diagnostic criteria to identify patient conditions",
			"Evaluate treatment options based on evidence",
		},
		KeyConcepts: []ledger.Entry{
			{Name: "Differential Diagnosis", Points: 25},
			{Name: "Treatment Planning", Points: 25},
			{Name: "Patient Communication", Points: 25},
			{Name: "Ethical Decision Making", Points: 25},
		},
		PassingThreshold: &threshold,
		SourceContent: "Medical ethics requires informed consent from all patients. " +
			"Differential diagnosis narrows candidate conditions by weighing symptoms against test results. " +
			"Treatment plans should be grounded in current evidence and revisited as the patient responds.",
	}
}
