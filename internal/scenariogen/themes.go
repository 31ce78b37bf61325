package scenariogen

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ThemeContext is the setting material a theme contributes to prompts and
// template scenarios.
type ThemeContext struct {
	Keys       []string `yaml:"keys"`
	Setting    string   `yaml:"setting"`
	Role       string   `yaml:"role"`
	Atmosphere string   `yaml:"atmosphere"`
	NPCs       []string `yaml:"npcs"`
	Elements   []string `yaml:"elements"`
	Stakes     string   `yaml:"stakes"`
}

// NPC returns the i-th character, cycling through the list.
func (t ThemeContext) NPC(i int) string {
	if len(t.NPCs) == 0 {
		return "Supervisor"
	}
	return t.NPCs[i%len(t.NPCs)]
}

//go:embed themes.yaml
var themesYAML []byte

var themes = mustLoadThemes(themesYAML)

// genericTheme is used when no keyword matches.
var genericTheme = ThemeContext{
	Setting:    "a professional environment",
	Role:       "a key decision-maker",
	Atmosphere: "The situation demands your full attention and expertise.",
	NPCs:       []string{"Supervisor", "Colleague", "Client", "Expert", "Stakeholder"},
	Elements:   []string{"critical decisions", "stakeholder interests", "ethical considerations", "time pressure", "resource constraints"},
	Stakes:     "success, integrity, relationships",
}

func mustLoadThemes(data []byte) []ThemeContext {
	var out []ThemeContext
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("scenariogen: embedded themes: %v", err))
	}
	return out
}

// ThemeFor returns the first theme context whose keyword occurs in theme,
// ignoring case, or the generic context.
func ThemeFor(theme string) ThemeContext {
	lower := strings.ToLower(theme)
	for _, t := range themes {
		for _, k := range t.Keys {
			if strings.Contains(lower, k) {
				return t
			}
		}
	}
	return genericTheme
}
