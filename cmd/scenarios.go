package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Manage saved scenarios",
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scenarios, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		list, err := s.ScenarioRepo().List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list scenarios: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No saved scenarios.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-8s  %-8s  %5s  %s\n",
			"ID", "Created", "Source", "Concepts", "Nodes", "Title")
		fmt.Println(strings.Repeat("─", 110))
		for _, sc := range list {
			fmt.Printf("%-36s  %-19s  %-8s  %8d  %5d  %s\n",
				sc.ScenarioID,
				sc.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				sc.Source,
				sc.ConceptCount,
				sc.NodeCount,
				truncate(sc.Title, 40),
			)
		}
		return nil
	},
}

var scenariosPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent saved scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return errors.New("--keep must not be negative")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.ScenarioRepo().Prune(cmd.Context(), keep)
		if err != nil {
			return fmt.Errorf("prune scenarios: %w", err)
		}
		fmt.Printf("Removed %d scenario(s).\n", n)
		return nil
	},
}

func init() {
	scenariosListCmd.Flags().IntP("limit", "n", 20, "Number of scenarios to show")
	scenariosPruneCmd.Flags().Int("keep", 10, "Number of recent scenarios to keep")

	scenariosCmd.AddCommand(scenariosListCmd)
	scenariosCmd.AddCommand(scenariosPruneCmd)
}
