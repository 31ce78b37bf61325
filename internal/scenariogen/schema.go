package scenariogen

import "github.com/abhisek/edquest/internal/llm"

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func object(props map[string]any) map[string]any {
	required := make([]any, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func array(items map[string]any, desc string) map[string]any {
	return map[string]any{"type": "array", "items": items, "description": desc}
}

var choiceSchema = object(map[string]any{
	"text": str("Professional-sounding action, at most 60 characters"),
	"quality": map[string]any{
		"type":        "string",
		"enum":        []any{"best", "partial", "poor"},
		"description": "How well the action applies the concept",
	},
	"consequence": str("One-sentence outcome of the action"),
	"feedback":    str("Why the action was or was not a good application of the concept"),
})

var decisionSchema = object(map[string]any{
	"situation": str("1-2 sentences presenting the immediate situation"),
	"prompt":    str("The question put to the learner"),
	"choices":   array(choiceSchema, "Options for this decision"),
})

var chapterSchema = object(map[string]any{
	"concept":    str("Key concept name, exactly as given"),
	"title":      str("Brief chapter title"),
	"setup":      str("2-3 sentences establishing the situation"),
	"decisions":  array(decisionSchema, "Connected decision points"),
	"resolution": str("One sentence wrapping up the chapter"),
})

// ScenarioSchema is the structured-output schema for a generated scenario.
// Required lists are built from the property maps, so the schema is valid
// for strict structured-output modes.
var ScenarioSchema = &llm.Schema{
	Name:        "edquest-scenario",
	Description: "An educational decision scenario with one chapter per key concept",
	Definition: object(map[string]any{
		"introduction": object(map[string]any{
			"situation": str("1-2 sentences setting the scene"),
			"role":      str("The learner's role in one sentence"),
			"stakes":    str("What is at stake in one sentence"),
		}),
		"chapters": array(chapterSchema, "One chapter per key concept"),
		"conclusion": object(map[string]any{
			"high_score":   str("Brief congratulations"),
			"medium_score": str("Brief encouragement"),
			"low_score":    str("Brief redirect to review"),
		}),
	}),
}
