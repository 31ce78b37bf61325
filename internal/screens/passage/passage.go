// Package passage renders the current node of a playthrough and turns key
// presses into engine moves.
package passage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edquest/internal/graph"
	"github.com/abhisek/edquest/internal/playback"
	"github.com/abhisek/edquest/internal/router"
	"github.com/abhisek/edquest/internal/screen"
	"github.com/abhisek/edquest/internal/screens/results"
	"github.com/abhisek/edquest/internal/session"
	"github.com/abhisek/edquest/internal/ui/components"
	"github.com/abhisek/edquest/internal/ui/layout"
	"github.com/abhisek/edquest/internal/ui/theme"
)

// PassageScreen shows one node at a time.
type PassageScreen struct {
	sess    *session.Session
	addr    string
	node    graph.Node
	choices components.ChoiceList
	status  string
}

var (
	_ screen.Screen          = (*PassageScreen)(nil)
	_ screen.KeyHintProvider = (*PassageScreen)(nil)
	_ screen.StatusProvider  = (*PassageScreen)(nil)
)

// New creates the screen for a started session.
func New(sess *session.Session) *PassageScreen {
	s := &PassageScreen{sess: sess}
	s.sync()
	return s
}

func (s *PassageScreen) Init() tea.Cmd { return nil }

func (s *PassageScreen) Title() string {
	switch n := s.node.(type) {
	case *graph.Situation:
		return n.Title
	case *graph.Transition:
		return n.Title
	case *graph.Outcome:
		return n.Title
	}
	return ""
}

func (s *PassageScreen) Status() string {
	return fmt.Sprintf("Score %d/%d", s.sess.Engine.TotalEarned(), s.sess.Scenario.Ledger.TotalPoints())
}

func (s *PassageScreen) KeyHints() []layout.KeyHint {
	var hints []layout.KeyHint
	if _, ok := s.node.(*graph.Situation); ok {
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Navigate"},
			layout.KeyHint{Key: "Enter/1-9", Description: "Choose"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Continue"})
	}
	if s.sess.Engine.CanBack() {
		hints = append(hints, layout.KeyHint{Key: "b", Description: "Back"})
	}
	return append(hints,
		layout.KeyHint{Key: "r", Description: "Restart"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// sync reloads the current node after a move.
func (s *PassageScreen) sync() {
	s.addr, s.node = s.sess.Engine.Current()
	if sit, ok := s.node.(*graph.Situation); ok {
		labels := make([]string, len(sit.Choices))
		for i, c := range sit.Choices {
			labels[i] = c.Label
		}
		s.choices = components.NewChoiceList(labels)
	}
}

func (s *PassageScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	ctx := context.Background()
	s.status = ""

	switch kmsg.String() {
	case "b":
		return s.apply(s.sess.Back())
	case "r":
		s.sess.Restart(ctx)
		s.sync()
		return s, nil
	}

	if _, ok := s.node.(*graph.Situation); ok {
		var picked int
		s.choices, picked = s.choices.Update(msg)
		if picked < 0 {
			return s, nil
		}
		return s.apply(s.sess.Choose(ctx, s.addr, picked))
	}

	switch kmsg.String() {
	case "enter", "space":
		return s.apply(s.sess.Continue(ctx))
	}
	return s, nil
}

// apply shows engine refusals as a status line; otherwise it moves to the
// new node, or to the results screen once the run is finished.
func (s *PassageScreen) apply(err error) (screen.Screen, tea.Cmd) {
	if err != nil {
		var eerr *playback.EngineError
		if errors.As(err, &eerr) {
			s.status = describe(eerr)
		} else {
			s.status = err.Error()
		}
		return s, nil
	}
	if s.sess.Finished() {
		next := results.New(s.sess, func() screen.Screen { return New(s.sess) })
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
	s.sync()
	return s, nil
}

func describe(e *playback.EngineError) string {
	switch e.Kind {
	case playback.NoHistory:
		return "Nothing to go back to."
	case playback.InvalidChoice:
		return "That choice is not available."
	case playback.NotWaypoint:
		return "Pick a choice to continue."
	default:
		return e.Error()
	}
}

func (s *PassageScreen) View(width, height int) string {
	textWidth := max(min(width-6, 100), 20)
	wrap := lipgloss.NewStyle().Width(textWidth)

	var b strings.Builder
	switch n := s.node.(type) {
	case *graph.Situation:
		b.WriteString(theme.Title.Render(n.Title))
		b.WriteString("\n\n")
		b.WriteString(wrap.Foreground(theme.Text).Render(n.Text))
		b.WriteString("\n\n")
		if n.Prompt != "" {
			b.WriteString(wrap.Foreground(theme.Accent).Bold(true).Render(n.Prompt))
			b.WriteString("\n\n")
		}
		b.WriteString(s.choices.View())

	case *graph.Transition:
		b.WriteString(theme.Title.Render(n.Title))
		b.WriteString("\n\n")
		b.WriteString(wrap.Foreground(theme.Text).Render(n.Text))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Enter: Continue"))

	case *graph.Outcome:
		b.WriteString(theme.ForPercent(n.ScorePercent).Render(n.Title))
		b.WriteString("  ")
		b.WriteString(s.pointsLine(n))
		b.WriteString("\n\n")
		if n.Narrative != "" {
			b.WriteString(wrap.Foreground(theme.Text).Render(n.Narrative))
			b.WriteString("\n\n")
		}
		if n.Feedback != "" {
			b.WriteString(theme.Feedback.Width(textWidth).Render(n.Feedback))
			b.WriteString("\n\n")
		}
		b.WriteString(theme.Hint.Render("Enter: Continue"))
	}

	if s.status != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Status.Render(s.status))
	}
	return lipgloss.NewStyle().Padding(1, 3).Render(b.String())
}

// pointsLine reports the points this outcome is worth. Only the first
// outcome reached for a concept counts.
func (s *PassageScreen) pointsLine(o *graph.Outcome) string {
	cs := s.sess.Engine.Scores()[o.Concept]
	if cs.Attempts > 1 {
		return theme.Hint.Render(fmt.Sprintf("(already scored %d/%d for %s)", cs.Earned, cs.Points, o.Concept))
	}
	return theme.ForPercent(o.ScorePercent).Render(fmt.Sprintf("+%d/%d points", cs.Earned, cs.Points))
}
