package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/edquest/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent playthrough events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryPlaythroughs(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query playthroughs: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No playthroughs recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-16s  %-8s  %-12s  %-9s  %6s  %s\n",
			"Timestamp", "Learner", "Session", "Scenario", "Action", "Score", "Result")
		fmt.Println(strings.Repeat("─", 92))
		for _, e := range events {
			score, result := "", ""
			if e.Action == store.ActionFinish {
				score = fmt.Sprintf("%.0f%%", e.Percentage)
				result = "NEEDS REVIEW"
				if e.Passed {
					result = "PASSED"
				}
			}
			fmt.Printf("%-19s  %-16s  %-8s  %-12s  %-9s  %6s  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Learner, 16),
				truncate(e.SessionID, 8),
				truncate(e.ScenarioID, 12),
				e.Action,
				score,
				result,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
}
