package cmd

import (
	"fmt"

	"github.com/abhisek/edquest/internal/logging"
	"github.com/abhisek/edquest/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edquest",
	Short: "Branching, graded learning scenarios in the terminal",
	Long: "EdQuest compiles decision-tree scenarios into playable passage graphs,\n" +
		"grades each concept a learner works through and reports the results.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		level, err := logging.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		if format != "text" && format != "json" {
			return fmt.Errorf("unknown log format %q (want text or json)", format)
		}
		logging.Init(level, format)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return playScenario(cmd, "", "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EDQUEST_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then EDQUEST_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore resolves the database path and opens it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
