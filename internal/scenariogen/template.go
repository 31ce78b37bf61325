package scenariogen

import (
	"context"
	"fmt"

	"github.com/abhisek/edquest/internal/scenario"
)

// TemplateGenerator builds a deterministic scenario from the theme table:
// one decision per concept with one correct and two incorrect choices. It
// needs no provider and is the fallback when AI generation fails.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator { return &TemplateGenerator{} }

func (TemplateGenerator) Generate(_ context.Context, req *Request) (*scenario.Description, error) {
	l, err := req.Ledger()
	if err != nil {
		return nil, err
	}
	theme := ThemeFor(req.Theme)

	d := &scenario.Description{
		Title: req.Title(),
		Introduction: scenario.Introduction{
			Situation: fmt.Sprintf("%s You find yourself %s. As %s, you must navigate complex situations that will test your knowledge and decision-making abilities.",
				theme.Atmosphere, theme.Setting, theme.Role),
			Role:   theme.Role,
			Stakes: theme.Stakes,
		},
		Conclusion: scenario.Conclusion{
			High:   "You applied each concept with confidence. Well done.",
			Medium: "A solid effort. Revisit the concepts you found harder.",
			Low:    "Review the source material and try the scenario again.",
		},
	}

	for i, c := range l.Concepts() {
		npc := theme.NPC(i)
		d.Chapters = append(d.Chapters, scenario.Chapter{
			Concept: c.Name,
			Title:   c.Name,
			Setup: fmt.Sprintf("You encounter a situation that requires your understanding of **%s**. The %s approaches you with a challenging problem.",
				c.Name, npc),
			Steps: []scenario.Step{{
				Situation: fmt.Sprintf("%s: \"We have a situation that requires your expertise. Based on what you know about %s, how should we proceed?\"",
					npc, c.Name),
				Prompt:  "What is the best course of action?",
				Choices: templateChoices(c.Name),
			}},
		})
	}
	return d, nil
}

func templateChoices(concept string) []scenario.StepChoice {
	correct := fmt.Sprintf("Your approach correctly applies the principles of %s as outlined in the source material.", concept)
	incorrect := fmt.Sprintf("This choice doesn't align with the proper application of %s principles from the source material.", concept)
	return []scenario.StepChoice{
		{
			Text:        clampChoice(fmt.Sprintf("Apply established %s principles", concept)),
			Quality:     scenario.QualityBest,
			Consequence: "Excellent choice!",
			Feedback:    correct,
		},
		{
			Text:        "Take a simplified approach",
			Quality:     scenario.QualityPoor,
			Consequence: "This approach has issues.",
			Feedback:    incorrect,
		},
		{
			Text:        "Defer the decision",
			Quality:     scenario.QualityPoor,
			Consequence: "This approach has issues.",
			Feedback:    incorrect,
		},
	}
}
