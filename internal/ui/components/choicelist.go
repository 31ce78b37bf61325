package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edquest/internal/ui/theme"
)

// ChoiceList is a numbered vertical list of choices. Arrow keys (or j/k)
// move the cursor; Enter picks the highlighted choice and 1-9 pick
// directly.
type ChoiceList struct {
	Options  []string
	Selected int
}

// NewChoiceList creates a list with the cursor on the first option.
func NewChoiceList(options []string) ChoiceList {
	return ChoiceList{Options: options}
}

// Update moves the cursor. The second result is the picked index, or -1
// when the key did not pick anything.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, int) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Options) == 0 {
		return c, -1
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter":
		return c, c.Selected
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Selected = i
				return c, i
			}
		}
	}
	return c, -1
}

// View renders the list, one option per line.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		style := theme.Unselected
		if i == c.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%d. %s", prefix, i+1, opt)))
		if i < len(c.Options)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
