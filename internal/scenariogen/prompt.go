package scenariogen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/edquest/internal/ledger"
)

const (
	maxSourceRunes    = 20000
	maxCaseStudyRunes = 15000
)

const systemPrompt = `You write application-focused training scenarios. Learners apply concepts through realistic decisions instead of recognising textbook answers.

Rules:
- Keep text short: at most 2-3 sentences per situation. Reach the decision quickly.
- Every choice must sound like something a competent professional might do. Wrong choices reflect common misconceptions or incomplete understanding, never laziness or negligence.
- Choices differ in how they apply the concept, not in whether the learner is trying.
- Ask how the concept applies to this specific situation, not what the concept is.
- Choice text is at most 60 characters.
- Label every choice with a quality: "best" for the choice that applies the concept properly, "partial" for one that gets some of it right, "poor" otherwise.
- Consequences are one sentence. Feedback explains why, referring to the source material.
- Write one chapter per key concept, using the concept name exactly as given.`

// buildUserMessage renders the request into the prompt body.
func buildUserMessage(req *Request, l *ledger.Ledger) string {
	theme := ThemeFor(req.Theme)
	var b strings.Builder

	fmt.Fprintf(&b, "Theme: %s\n", req.Theme)
	fmt.Fprintf(&b, "Setting: %s\n", theme.Setting)
	fmt.Fprintf(&b, "Learner role: %s\n", theme.Role)
	fmt.Fprintf(&b, "Stakes: %s\n", theme.Stakes)

	if cs := req.CaseStudy; cs != nil && cs.Content != "" {
		title := cs.Title
		if title == "" {
			title = "Case Study"
		}
		fmt.Fprintf(&b, "\nCase study (primary source, build the scenario inside it): %s\n", title)
		b.WriteString(truncate(cs.Content, maxCaseStudyRunes, "\n\n[Truncated...]"))
		b.WriteString("\nUse the case's own characters, organisations and dilemmas.\n")
	}

	b.WriteString("\nSupplementary materials:\n")
	if src := req.SourceText(); src != "" {
		b.WriteString(truncate(src, maxSourceRunes, "\n\n[Content truncated...]"))
	} else {
		b.WriteString("(none provided)")
	}
	b.WriteString("\n")

	b.WriteString("\nLearning objectives:\n")
	if len(req.LearningObjectives) == 0 {
		b.WriteString("- (none listed)\n")
	}
	for _, o := range req.LearningObjectives {
		fmt.Fprintf(&b, "- %s\n", o)
	}

	b.WriteString("\nKey concepts:\n")
	for _, c := range l.Concepts() {
		fmt.Fprintf(&b, "- %s (%d points)\n", c.Name, c.Points)
	}

	fmt.Fprintf(&b, "\nStructure: %d chapters, one per concept. Each chapter has a short setup, %d decisions with %d choices each, and a one-sentence resolution.\n",
		l.Len(), req.decisionNodes(), req.branchesPerNode())
	b.WriteString("Finish with one-sentence conclusions for high, medium and low scores.")

	return b.String()
}

// truncate cuts s to at most n runes and appends suffix when it did.
func truncate(s string, n int, suffix string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + suffix
}
