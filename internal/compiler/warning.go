package compiler

import "fmt"

// WarningKind classifies a non-fatal compile finding.
type WarningKind string

const (
	UnreachableEnding WarningKind = "unreachable_ending"
	UnreachableNode   WarningKind = "unreachable_node"
	UniformOutcomes   WarningKind = "uniform_outcomes"
	ScoreClamped      WarningKind = "score_clamped"
	UnknownQuality    WarningKind = "unknown_quality"
	NoBestChoice      WarningKind = "no_best_choice"
	ExtraChapter      WarningKind = "extra_chapter"
)

// Warning is reported alongside a successful compile.
type Warning struct {
	Kind    WarningKind
	Concept string
	Ref     string
	Message string
}

func (w Warning) String() string {
	s := string(w.Kind)
	if w.Concept != "" {
		s += fmt.Sprintf(" [%s]", w.Concept)
	}
	if w.Ref != "" {
		s += " " + w.Ref
	}
	if w.Message != "" {
		s += ": " + w.Message
	}
	return s
}
