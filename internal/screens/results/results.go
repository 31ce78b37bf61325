// Package results is the closing screen of a playthrough: the grade, the
// per-concept breakdown and the conclusion text.
package results

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	grading "github.com/abhisek/edquest/internal/results"
	"github.com/abhisek/edquest/internal/router"
	"github.com/abhisek/edquest/internal/screen"
	"github.com/abhisek/edquest/internal/session"
	"github.com/abhisek/edquest/internal/ui/components"
	"github.com/abhisek/edquest/internal/ui/layout"
	"github.com/abhisek/edquest/internal/ui/theme"
)

// ResultsScreen shows the graded playthrough.
type ResultsScreen struct {
	sess    *session.Session
	res     grading.Results
	restart func() screen.Screen
}

var (
	_ screen.Screen          = (*ResultsScreen)(nil)
	_ screen.KeyHintProvider = (*ResultsScreen)(nil)
	_ screen.StatusProvider  = (*ResultsScreen)(nil)
)

// New grades the finished session. restart builds the screen shown after
// the session restarts.
func New(sess *session.Session, restart func() screen.Screen) *ResultsScreen {
	return &ResultsScreen{sess: sess, res: sess.Results(), restart: restart}
}

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) Title() string { return "Results" }

func (s *ResultsScreen) Status() string {
	return fmt.Sprintf("Score %d/%d", s.res.TotalEarned, s.res.TotalPoints)
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter/r", Description: "Play again"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter", "r":
		s.sess.Restart(context.Background())
		next := s.restart()
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	case "q":
		return s, tea.Quit
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	r := s.res
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(fmt.Sprintf("%d%%", r.Percentage)))
	b.WriteString("\n")
	if r.Passed {
		b.WriteString(center.Inherit(theme.Correct).Render("PASSED"))
	} else {
		b.WriteString(center.Inherit(theme.Incorrect).Render("NEEDS REVIEW"))
	}
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.Text).Render(fmt.Sprintf("Score: %d / %d points", r.TotalEarned, r.TotalPoints)))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.TextDim).Render(fmt.Sprintf("Required: %d%% (%d points)", r.Threshold, r.PassingPoints)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Subtitle.Render("Concept breakdown")))
	b.WriteString("\n")
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 60), 0)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	nameWidth := 0
	for _, c := range r.Concepts {
		nameWidth = max(nameWidth, lipgloss.Width(c.Concept))
	}
	barWidth := max(min(width-nameWidth-24, 30), 4)
	for _, c := range r.Concepts {
		mark, style := categoryMark(c.Category)
		bar := components.ProgressBar{
			Percent: float64(c.Earned) / float64(max(c.Points, 1)),
			Width:   barWidth,
			Fill:    categoryColor(c.Category),
		}
		line := fmt.Sprintf("%s %-*s %s %3d/%-3d", style.Render(mark), nameWidth, c.Concept, bar.View(), c.Earned, c.Points)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Padding(0, 4).
		Foreground(theme.Text).Italic(true).
		Render(r.Conclusion(s.sess.Scenario.Conclusion)))

	return b.String()
}

func categoryMark(c grading.Category) (string, lipgloss.Style) {
	switch c {
	case grading.Mastered:
		return "✓", theme.Correct
	case grading.Partial:
		return "~", theme.PartialCredit
	default:
		return "✗", theme.Incorrect
	}
}

func categoryColor(c grading.Category) color.Color {
	switch c {
	case grading.Mastered:
		return theme.Success
	case grading.Partial:
		return theme.Warning
	default:
		return theme.Error
	}
}
