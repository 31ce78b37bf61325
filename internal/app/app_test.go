package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edquest/internal/bundle"
	"github.com/abhisek/edquest/internal/compiler"
	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/router"
	"github.com/abhisek/edquest/internal/scenario"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	l, err := ledger.New([]ledger.Concept{{Name: "Triage", Points: 10}}, 70)
	if err != nil {
		t.Fatal(err)
	}
	d := &scenario.Description{Title: "Night Shift", Chapters: []scenario.Chapter{{
		Concept: "Triage",
		Steps: []scenario.Step{{Situation: "s", Choices: []scenario.StepChoice{
			{Text: "a", Quality: scenario.QualityBest},
			{Text: "b", Quality: scenario.QualityPoor},
		}}},
	}}}
	res, err := compiler.New().Compile(l, d)
	if err != nil {
		t.Fatal(err)
	}
	return Options{Scenario: bundle.New("Night Shift", res.Graph, l, d.Conclusion), Learner: "Ada"}
}

func TestApp_CtrlCQuits(t *testing.T) {
	m := newAppModel(testOptions(t))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected QuitMsg, got %T", cmd())
	}
}

func TestApp_ViewFrame(t *testing.T) {
	var model tea.Model = newAppModel(testOptions(t))
	model, _ = model.Update(tea.WindowSizeMsg{Width: 90, Height: 30})

	frame := model.(AppModel).render()
	if !strings.Contains(frame, "EdQuest") || !strings.Contains(frame, "Night Shift") {
		t.Error("frame should show the app name and the scenario title")
	}
}

func TestApp_TooSmall(t *testing.T) {
	var model tea.Model = newAppModel(testOptions(t))
	model, _ = model.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	if !strings.Contains(model.(AppModel).render(), "Terminal too small") {
		t.Error("expected the minimum size message")
	}
}

func TestApp_ReplaceNavigates(t *testing.T) {
	m := newAppModel(testOptions(t))
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected navigation command from intro")
	}
	msg := cmd()
	if _, ok := msg.(router.ReplaceScreenMsg); !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}
	m.Update(msg)
	if m.router.Active().Title() != "Night Shift" {
		t.Errorf("expected the start node, got %q", m.router.Active().Title())
	}
}

func TestRun_NoScenario(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Error("expected an error without a scenario")
	}
}
