package cmd

import (
	"github.com/abhisek/edquest/internal/app"
	"github.com/abhisek/edquest/internal/bundle"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [bundle.json]",
	Short: "Play a scenario in the terminal",
	Long: "Play loads a bundle file, a saved scenario (--id) or, with neither,\n" +
		"the most recently saved scenario.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return playScenario(cmd, path, id)
	},
}

// playScenario opens the store for playthrough events and launches the TUI.
func playScenario(cmd *cobra.Command, path, id string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var sc *bundle.Scenario
	if path != "" {
		sc, err = bundle.ReadFile(path)
	} else {
		sc, err = loadSaved(cmd.Context(), s.ScenarioRepo(), id)
	}
	if err != nil {
		return err
	}

	learner, _ := cmd.Flags().GetString("learner")
	return app.Run(app.Options{
		Scenario: sc,
		Recorder: s.EventRepo(),
		Learner:  learner,
	})
}

func init() {
	playCmd.Flags().String("id", "", "Play a saved scenario by ID")
	playCmd.Flags().String("learner", "", "Pre-fill the learner name")
}
