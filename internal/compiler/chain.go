package compiler

import (
	"fmt"

	"github.com/abhisek/edquest/internal/scenario"
)

// Fallback texts for linear-chain choices that carry none, keyed by score.
var (
	defaultStepConsequence = map[int]string{100: "Good outcome.", 50: "Mixed results.", 0: "This creates issues."}
	defaultEndConsequence  = map[int]string{100: "Success.", 50: "Mixed results.", 0: "Problems occurred."}
	defaultEndFeedback     = map[int]string{100: "Correct application of the concept.", 50: "Partially correct.", 0: "This approach has issues."}
)

const betterApproachLimit = 150

// treeFromChain rewrites a linear chain into a branch tree. Every choice of
// a non-final step continues to the next step through a waypoint carrying
// its consequence. Only the final step's choices lead to endings, scored by
// quality.
func treeFromChain(concept string, steps []scenario.Step) (*scenario.BranchTree, []Warning) {
	var (
		warnings  []Warning
		decisions []scenario.TreeNode
		endings   []scenario.TreeNode
	)
	last := len(steps) - 1

	for j, step := range steps {
		scores, best := stepScores(concept, j, step, &warnings)
		node := scenario.TreeNode{
			ID:        stepID(j),
			Situation: step.Situation,
			Prompt:    step.Prompt,
		}

		for k, ch := range step.Choices {
			if j < last {
				consequence := ch.Consequence
				if consequence == "" {
					consequence = defaultStepConsequence[scores[k]]
				}
				node.Choices = append(node.Choices, scenario.TreeChoice{
					Text:       ch.Text,
					Quality:    ch.Quality,
					LeadsTo:    stepID(j + 1),
					Transition: consequence,
				})
				continue
			}

			endID := fmt.Sprintf("%s-end%d", stepID(j), k+1)
			node.Choices = append(node.Choices, scenario.TreeChoice{Text: ch.Text, Quality: ch.Quality, LeadsTo: endID})

			var better string
			if best >= 0 && best != k {
				better = step.Choices[best].Feedback
			}
			endings = append(endings, chainEnding(endID, ch, scores[k], better))
		}
		decisions = append(decisions, node)
	}

	return &scenario.BranchTree{Root: stepID(0), Nodes: append(decisions, endings...)}, warnings
}

// stepScores scores each choice of a step and returns the index of the
// best choice. A step without a best or optimal choice promotes its first
// choice.
func stepScores(concept string, j int, step scenario.Step, warnings *[]Warning) ([]int, int) {
	scores := make([]int, len(step.Choices))
	best := -1
	for k, ch := range step.Choices {
		pct, known := ch.Quality.ScorePercent()
		if !known {
			*warnings = append(*warnings, Warning{
				Kind:    UnknownQuality,
				Concept: concept,
				Ref:     stepID(j),
				Message: fmt.Sprintf("choice %d quality %q treated as poor", k+1, ch.Quality),
			})
		}
		scores[k] = pct
		if pct == 100 && best < 0 {
			best = k
		}
	}
	if best < 0 && len(scores) > 0 {
		best = 0
		scores[0] = 100
		*warnings = append(*warnings, Warning{Kind: NoBestChoice, Concept: concept, Ref: stepID(j), Message: "no best choice; the first choice is scored as best"})
	}
	return scores, best
}

func chainEnding(id string, ch scenario.StepChoice, pct int, better string) scenario.TreeNode {
	consequence := ch.Consequence
	if consequence == "" {
		consequence = defaultEndConsequence[pct]
	}
	feedback := ch.Feedback
	if feedback == "" {
		feedback = defaultEndFeedback[pct]
	}
	if better != "" {
		if r := []rune(better); len(r) > betterApproachLimit {
			better = string(r[:betterApproachLimit])
		}
		feedback = joinText(feedback, "Better approach: "+better)
	}
	return scenario.TreeNode{
		ID:           id,
		IsEnding:     true,
		ScorePercent: pct,
		Title:        outcomeTitle(pct),
		Narrative:    consequence,
		Feedback:     feedback,
	}
}

func stepID(j int) string {
	return fmt.Sprintf("step%d", j+1)
}
