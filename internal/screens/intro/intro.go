// Package intro is the first screen of a playthrough: what the scenario
// assesses and who is playing.
package intro

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edquest/internal/bundle"
	"github.com/abhisek/edquest/internal/router"
	"github.com/abhisek/edquest/internal/screen"
	"github.com/abhisek/edquest/internal/screens/passage"
	"github.com/abhisek/edquest/internal/session"
	"github.com/abhisek/edquest/internal/ui/components"
	"github.com/abhisek/edquest/internal/ui/layout"
	"github.com/abhisek/edquest/internal/ui/theme"
)

const maxNameLength = 40

// IntroScreen shows the scenario overview and asks for the learner's name.
type IntroScreen struct {
	scenario *bundle.Scenario
	recorder session.Recorder
	name     components.TextInput
	errMsg   string
}

var _ screen.Screen = (*IntroScreen)(nil)
var _ screen.KeyHintProvider = (*IntroScreen)(nil)

// New creates the intro screen. learner pre-fills the name field.
func New(sc *bundle.Scenario, rec session.Recorder, learner string) *IntroScreen {
	name := components.NewTextInput("Your name", maxNameLength)
	name.SetValue(learner)
	return &IntroScreen{scenario: sc, recorder: rec, name: name}
}

func (s *IntroScreen) Init() tea.Cmd {
	return s.name.Init()
}

func (s *IntroScreen) Title() string {
	return "Welcome"
}

func (s *IntroScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *IntroScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s.start()
	}
	var cmd tea.Cmd
	s.name, cmd = s.name.Update(msg)
	return s, cmd
}

func (s *IntroScreen) start() (screen.Screen, tea.Cmd) {
	sess, err := session.New(s.scenario, s.name.Value(), s.recorder)
	if err != nil {
		s.errMsg = fmt.Sprintf("This scenario cannot be played: %v", err)
		return s, nil
	}
	sess.Start(context.Background())
	next := passage.New(sess)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *IntroScreen) View(width, height int) string {
	sc := s.scenario
	l := sc.Ledger
	wrap := lipgloss.NewStyle().Width(max(width-6, 20))

	var b strings.Builder
	b.WriteString(theme.Title.Render(sc.Title))
	b.WriteString("\n")
	if sc.Theme != "" {
		b.WriteString(theme.Subtitle.Render(sc.Theme))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(theme.Body.Bold(true).Render("You will be assessed on:"))
	b.WriteString("\n")
	for _, c := range l.Concepts() {
		b.WriteString(theme.Body.Render(fmt.Sprintf("  • %s (%d pts)", c.Name, c.Points)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(wrap.Foreground(theme.TextDim).Render(fmt.Sprintf(
		"Total points: %d   Passing score: %d%% (%d points)",
		l.TotalPoints(), l.PassingThreshold(), l.PassingPoints())))
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Render("Name: "))
	b.WriteString(s.name.View())
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Status.Render(s.errMsg))
	}

	return lipgloss.NewStyle().Padding(1, 3).Render(b.String())
}
