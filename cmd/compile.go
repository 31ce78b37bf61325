package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abhisek/edquest/internal/bundle"
	"github.com/abhisek/edquest/internal/compiler"
	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/scenario"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <description>...",
	Short: "Compile scenario descriptions into playable bundles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ledgerPath, _ := cmd.Flags().GetString("ledger")
		outDir, _ := cmd.Flags().GetString("out")
		seed, _ := cmd.Flags().GetUint64("seed")
		save, _ := cmd.Flags().GetBool("save")

		outs, err := bundlePaths(outDir, args)
		if err != nil {
			return err
		}

		l, err := ledger.Load(ledgerPath)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}

		jobs := make([]compiler.Job, len(args))
		for i, path := range args {
			d, err := scenario.Load(path)
			if err != nil {
				return err
			}
			jobs[i] = compiler.Job{Ledger: l, Description: d}
		}

		if cmd.Flags().Changed("seed") {
			compiler.SeededJobs(jobs, seed)
		}
		results, err := compiler.New().CompileAll(ctx, jobs, 0)
		if err != nil {
			return fmt.Errorf("compile: %w", err)
		}

		var saver func(*bundle.Scenario) error
		if save {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			repo := s.ScenarioRepo()
			saver = func(sc *bundle.Scenario) error { return saveScenario(ctx, repo, sc) }
		}

		for i, res := range results {
			d := jobs[i].Description
			sc := bundle.New(d.Title, res.Graph, l, d.Conclusion)
			sc.Source = "compiled"

			out := outs[i]
			if err := bundle.WriteFile(out, sc); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("%s → %s (%d passages, id %s)\n", args[i], out, res.Graph.Len(), sc.ID)
			printWarnings(res.Warnings)

			if saver != nil {
				if err := saver(sc); err != nil {
					return fmt.Errorf("save %s: %w", sc.ID, err)
				}
			}
		}
		return nil
	},
}

// bundleName maps "x/night-shift.yaml" to "night-shift.bundle.json".
func bundleName(descPath string) string {
	base := filepath.Base(descPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".bundle.json"
}

// bundlePaths maps each description to its bundle file in outDir and
// rejects descriptions that would overwrite each other's bundle.
func bundlePaths(outDir string, descs []string) ([]string, error) {
	outs := make([]string, len(descs))
	seen := make(map[string]string, len(descs))
	for i, desc := range descs {
		out := filepath.Join(outDir, bundleName(desc))
		if prev, dup := seen[out]; dup {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, desc, out)
		}
		seen[out] = desc
		outs[i] = out
	}
	return outs, nil
}

func init() {
	compileCmd.Flags().String("ledger", "", "Concept ledger file (YAML)")
	compileCmd.Flags().String("out", ".", "Directory for compiled bundles")
	compileCmd.Flags().Uint64("seed", 0, "Seed for reproducible choice order")
	compileCmd.Flags().Bool("save", false, "Also store the bundles in the database")
	_ = compileCmd.MarkFlagRequired("ledger")
}
