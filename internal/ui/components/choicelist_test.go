package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func TestChoiceList_Navigate(t *testing.T) {
	c := NewChoiceList([]string{"a", "b", "c"})

	c, picked := c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if picked != -1 || c.Selected != 1 {
		t.Fatalf("after down: selected=%d picked=%d", c.Selected, picked)
	}
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if c.Selected != 2 {
		t.Errorf("cursor should stop at the last option, got %d", c.Selected)
	}
	c, _ = c.Update(key('k'))
	if c.Selected != 1 {
		t.Errorf("after k: selected=%d", c.Selected)
	}
	if _, picked = c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); picked != 1 {
		t.Errorf("enter picked %d, want 1", picked)
	}
}

func TestChoiceList_NumberKeys(t *testing.T) {
	c := NewChoiceList([]string{"a", "b"})

	if _, picked := c.Update(key('2')); picked != 1 {
		t.Errorf("2 picked %d, want 1", picked)
	}
	if _, picked := c.Update(key('3')); picked != -1 {
		t.Errorf("3 should not pick with two options, got %d", picked)
	}
	if _, picked := c.Update(key('0')); picked != -1 {
		t.Errorf("0 should not pick, got %d", picked)
	}
}

func TestChoiceList_View(t *testing.T) {
	view := NewChoiceList([]string{"Escalate", "Wait"}).View()
	if !strings.Contains(view, "1. Escalate") || !strings.Contains(view, "2. Wait") {
		t.Errorf("unexpected view: %q", view)
	}
}
