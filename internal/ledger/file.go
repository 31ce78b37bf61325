package ledger

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one key_concepts item as written in a request or ledger file.
// It accepts either a bare concept name or a {name, points} mapping.
type Entry struct {
	Name   string
	Points int
}

// UnmarshalYAML accepts a scalar name or a mapping with name and points.
// JSON input decodes through the same path since yaml.v3 parses JSON.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		e.Name = node.Value
		return nil
	case yaml.MappingNode:
		var raw struct {
			Name   string `yaml:"name"`
			Points int    `yaml:"points"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		e.Name, e.Points = raw.Name, raw.Points
		return nil
	default:
		return fmt.Errorf("line %d: concept must be a name or a {name, points} mapping", node.Line)
	}
}

// MarshalYAML writes the short scalar form when no points are set.
func (e Entry) MarshalYAML() (any, error) {
	if e.Points == 0 {
		return e.Name, nil
	}
	return map[string]any{"name": e.Name, "points": e.Points}, nil
}

// FromEntries applies defaultPoints to entries without points, trims empty
// names and builds a Ledger. A non-positive defaultPoints falls back to
// DefaultPoints.
func FromEntries(entries []Entry, defaultPoints, threshold int) (*Ledger, error) {
	if defaultPoints <= 0 {
		defaultPoints = DefaultPoints
	}
	concepts := make([]Concept, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		pts := e.Points
		if pts == 0 {
			pts = defaultPoints
		}
		concepts = append(concepts, Concept{Name: e.Name, Points: pts})
	}
	return New(concepts, threshold)
}

// File is the on-disk ledger format.
type File struct {
	KeyConcepts      []Entry `yaml:"key_concepts"`
	DefaultPoints    int     `yaml:"default_points"`
	PassingThreshold *int    `yaml:"passing_threshold"`
}

// Build turns the file contents into a Ledger.
func (f *File) Build() (*Ledger, error) {
	threshold := DefaultThreshold
	if f.PassingThreshold != nil {
		threshold = *f.PassingThreshold
	}
	return FromEntries(f.KeyConcepts, f.DefaultPoints, threshold)
}

// Load reads a YAML or JSON ledger file.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	l, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}
