// Package scenario defines the scenario description consumed by the graph
// compiler: an introduction, one chapter per concept and conclusion texts.
//
// A chapter carries either a BranchTree (multi-level branching) or a legacy
// LinearChain of Steps. The tree wins when both are present.
package scenario

import "strings"

// Description is a full scenario, as produced by a generator or read from a
// file.
type Description struct {
	Title        string       `json:"title" yaml:"title"`
	Introduction Introduction `json:"introduction" yaml:"introduction"`
	Chapters     []Chapter    `json:"chapters" yaml:"chapters"`
	Conclusion   Conclusion   `json:"conclusion" yaml:"conclusion"`
}

// Introduction frames the scenario before the first chapter.
type Introduction struct {
	Situation string `json:"situation" yaml:"situation"`
	Role      string `json:"role" yaml:"role"`
	Stakes    string `json:"stakes" yaml:"stakes"`
}

// Conclusion holds the closing text for each results band.
type Conclusion struct {
	High   string `json:"high_score" yaml:"high_score"`
	Medium string `json:"medium_score" yaml:"medium_score"`
	Low    string `json:"low_score" yaml:"low_score"`
}

// Chapter is the part of a scenario that tests one concept.
type Chapter struct {
	Concept    string      `json:"concept" yaml:"concept"`
	Title      string      `json:"title,omitempty" yaml:"title,omitempty"`
	Setup      string      `json:"setup,omitempty" yaml:"setup,omitempty"`
	Tree       *BranchTree `json:"tree,omitempty" yaml:"tree,omitempty"`
	Steps      []Step      `json:"decisions,omitempty" yaml:"decisions,omitempty"`
	Resolution string      `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

// HasTree reports whether the chapter carries a usable branch tree.
func (c *Chapter) HasTree() bool {
	return c.Tree != nil && len(c.Tree.Nodes) > 0
}

// BranchTree is a set of decision and ending nodes keyed by local ID, with
// a distinguished root.
type BranchTree struct {
	Root  string     `json:"root" yaml:"root"`
	Nodes []TreeNode `json:"nodes" yaml:"nodes"`
}

// TreeNode is either a decision (situation plus choices) or an ending.
type TreeNode struct {
	ID string `json:"id" yaml:"id"`

	// Decision fields.
	Situation string       `json:"situation,omitempty" yaml:"situation,omitempty"`
	Prompt    string       `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Choices   []TreeChoice `json:"choices,omitempty" yaml:"choices,omitempty"`

	// Ending fields.
	IsEnding     bool   `json:"is_ending,omitempty" yaml:"is_ending,omitempty"`
	ScorePercent int    `json:"score_percent,omitempty" yaml:"score_percent,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Narrative    string `json:"narrative,omitempty" yaml:"narrative,omitempty"`
	Feedback     string `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// TreeChoice is one option of a decision node.
type TreeChoice struct {
	Text       string  `json:"text" yaml:"text"`
	Quality    Quality `json:"quality,omitempty" yaml:"quality,omitempty"`
	LeadsTo    string  `json:"leads_to" yaml:"leads_to"`
	Transition string  `json:"transition,omitempty" yaml:"transition,omitempty"`
}

// Step is one decision of a legacy linear chain.
type Step struct {
	Situation string       `json:"situation" yaml:"situation"`
	Prompt    string       `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Choices   []StepChoice `json:"choices" yaml:"choices"`
}

// StepChoice is one quality-labelled option of a Step.
type StepChoice struct {
	Text        string  `json:"text" yaml:"text"`
	Quality     Quality `json:"quality" yaml:"quality"`
	Consequence string  `json:"consequence,omitempty" yaml:"consequence,omitempty"`
	Feedback    string  `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// Quality labels how good a linear-chain choice is.
type Quality string

const (
	QualityBest     Quality = "best"
	QualityOptimal  Quality = "optimal"
	QualityPartial  Quality = "partial"
	QualityAdequate Quality = "adequate"
	QualityPoor     Quality = "poor"
)

// Normalize lower-cases and trims the label.
func (q Quality) Normalize() Quality {
	return Quality(strings.ToLower(strings.TrimSpace(string(q))))
}

// ScorePercent maps a quality to the score of the outcome it leads to.
// The second result is false for labels outside the known set, which
// score as poor.
func (q Quality) ScorePercent() (int, bool) {
	switch q.Normalize() {
	case QualityBest, QualityOptimal:
		return 100, true
	case QualityPartial, QualityAdequate:
		return 50, true
	case QualityPoor:
		return 0, true
	default:
		return 0, false
	}
}

// ChapterFor returns the first chapter for the named concept.
func (d *Description) ChapterFor(concept string) (*Chapter, bool) {
	for i := range d.Chapters {
		if d.Chapters[i].Concept == concept {
			return &d.Chapters[i], true
		}
	}
	return nil, false
}
