// Package results turns a playthrough's score record into the final
// grade and per-concept breakdown.
package results

import (
	"math"

	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/playback"
	"github.com/abhisek/edquest/internal/scenario"
)

// MasteryPercent is the outcome score at or above which a concept counts
// as mastered.
const MasteryPercent = 80

// Category classifies a concept's result.
type Category string

const (
	Mastered    Category = "mastered"
	Partial     Category = "partial"
	NeedsReview Category = "needs_review"
)

// Band selects the conclusion text.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ConceptResult is one row of the breakdown.
type ConceptResult struct {
	Concept      string   `json:"concept"`
	Points       int      `json:"points"`
	Earned       int      `json:"earned"`
	ScorePercent int      `json:"score_percent"`
	Answered     bool     `json:"answered"`
	Attempts     int      `json:"attempts"`
	Category     Category `json:"category"`
}

// Results is the graded playthrough.
type Results struct {
	TotalEarned   int             `json:"total_earned"`
	TotalPoints   int             `json:"total_points"`
	Percentage    int             `json:"percentage"`
	Threshold     int             `json:"threshold"`
	PassingPoints int             `json:"passing_points"`
	Passed        bool            `json:"passed"`
	Band          Band            `json:"band"`
	Concepts      []ConceptResult `json:"concepts"`
}

// Aggregate grades scores against l. Concepts missing from scores count as
// unanswered.
func Aggregate(l *ledger.Ledger, scores playback.ScoreRecord) Results {
	r := Results{
		TotalPoints:   l.TotalPoints(),
		Threshold:     l.PassingThreshold(),
		PassingPoints: l.PassingPoints(),
	}

	for _, c := range l.Concepts() {
		cs := scores[c.Name]
		earned := max(0, min(cs.Earned, c.Points))
		r.TotalEarned += earned
		r.Concepts = append(r.Concepts, ConceptResult{
			Concept:      c.Name,
			Points:       c.Points,
			Earned:       earned,
			ScorePercent: cs.ScorePercent,
			Answered:     cs.Answered,
			Attempts:     cs.Attempts,
			Category:     Classify(cs.Answered, cs.ScorePercent),
		})
	}

	r.Percentage = int(math.Round(100 * float64(r.TotalEarned) / float64(r.TotalPoints)))
	r.Passed = r.Percentage >= r.Threshold
	r.Band = BandFor(r.Percentage)
	return r
}

// Classify maps an outcome score onto a category. Unanswered concepts need
// review.
func Classify(answered bool, scorePercent int) Category {
	switch {
	case !answered || scorePercent <= 0:
		return NeedsReview
	case scorePercent >= MasteryPercent:
		return Mastered
	default:
		return Partial
	}
}

// BandFor picks the conclusion band for a percentage.
func BandFor(percentage int) Band {
	switch {
	case percentage >= MasteryPercent:
		return BandHigh
	case percentage >= 50:
		return BandMedium
	default:
		return BandLow
	}
}

// Conclusion returns the band's text from c, falling back to the other
// bands and then to a generic line.
func (r Results) Conclusion(c scenario.Conclusion) string {
	order := map[Band][]string{
		BandHigh:   {c.High, c.Medium, c.Low},
		BandMedium: {c.Medium, c.High, c.Low},
		BandLow:    {c.Low, c.Medium, c.High},
	}[r.Band]
	for _, s := range order {
		if s != "" {
			return s
		}
	}
	return "Great job applying these concepts!"
}

// Count returns how many concepts fall in cat.
func (r Results) Count(cat Category) int {
	n := 0
	for _, c := range r.Concepts {
		if c.Category == cat {
			n++
		}
	}
	return n
}
