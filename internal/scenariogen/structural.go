package scenariogen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/scenario"
)

// MaxChoiceText is the longest choice label kept, in runes.
const MaxChoiceText = 60

// defaultChoiceText replaces empty choice labels.
const defaultChoiceText = "Take action"

// StructuralValidator checks that every chapter has decisions and every
// decision offers at least two labelled choices.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(d *scenario.Description, _ *ledger.Ledger) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}
	if len(d.Chapters) == 0 {
		return fail("no chapters")
	}
	for ci, ch := range d.Chapters {
		if strings.TrimSpace(ch.Concept) == "" {
			return fail("chapter %d has no concept", ci+1)
		}
		if ch.HasTree() {
			continue
		}
		if len(ch.Steps) == 0 {
			return fail("chapter %q has no decisions", ch.Concept)
		}
		for si, st := range ch.Steps {
			if len(st.Choices) < 2 {
				return fail("chapter %q decision %d has %d choices, want at least 2", ch.Concept, si+1, len(st.Choices))
			}
			for _, c := range st.Choices {
				if _, ok := c.Quality.ScorePercent(); !ok {
					return fail("chapter %q decision %d: unknown quality %q", ch.Concept, si+1, c.Quality)
				}
			}
		}
	}
	return nil
}

// CoverageValidator checks that each ledger concept has exactly one
// chapter. Chapters for concepts outside the ledger are left for the
// compiler to report.
type CoverageValidator struct{}

func (v *CoverageValidator) Name() string { return "coverage" }

func (v *CoverageValidator) Validate(d *scenario.Description, l *ledger.Ledger) *ValidationError {
	seen := make(map[string]int, len(d.Chapters))
	for _, ch := range d.Chapters {
		seen[ch.Concept]++
	}
	var missing []string
	for _, c := range l.Concepts() {
		switch n := seen[c.Name]; {
		case n == 0:
			missing = append(missing, c.Name)
		case n > 1:
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("concept %q has %d chapters", c.Name, n),
				Retryable: true,
			}
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "no chapter for " + strings.Join(missing, ", "),
			Retryable: true,
		}
	}
	return nil
}

// ChoiceTextValidator clamps choice labels to MaxChoiceText runes and
// fills empty ones. It never fails.
type ChoiceTextValidator struct{}

func (v *ChoiceTextValidator) Name() string { return "choice-text" }

func (v *ChoiceTextValidator) Validate(d *scenario.Description, _ *ledger.Ledger) *ValidationError {
	for ci := range d.Chapters {
		ch := &d.Chapters[ci]
		for si := range ch.Steps {
			for k := range ch.Steps[si].Choices {
				c := &ch.Steps[si].Choices[k]
				c.Text = clampChoice(c.Text)
			}
		}
		if ch.Tree == nil {
			continue
		}
		for ni := range ch.Tree.Nodes {
			for k := range ch.Tree.Nodes[ni].Choices {
				c := &ch.Tree.Nodes[ni].Choices[k]
				c.Text = clampChoice(c.Text)
			}
		}
	}
	return nil
}

func clampChoice(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultChoiceText
	}
	if utf8.RuneCountInString(s) > MaxChoiceText {
		s = string([]rune(s)[:MaxChoiceText])
	}
	return s
}
