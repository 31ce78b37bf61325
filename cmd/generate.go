package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/abhisek/edquest/internal/bundle"
	"github.com/abhisek/edquest/internal/llm"
	"github.com/abhisek/edquest/internal/scenario"
	"github.com/abhisek/edquest/internal/scenariogen"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a scenario from learning objectives and source content",
	Long: "Generate asks the configured LLM provider for a scenario and compiles it.\n" +
		"When no provider is configured, or the AI attempt fails, a template\n" +
		"scenario is built from the concept list instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reqPath, _ := cmd.Flags().GetString("request")
		demo, _ := cmd.Flags().GetBool("demo")
		out, _ := cmd.Flags().GetString("out")
		descOut, _ := cmd.Flags().GetString("description")
		noAI, _ := cmd.Flags().GetBool("no-ai")
		seed, _ := cmd.Flags().GetUint64("seed")

		var req *scenariogen.Request
		switch {
		case reqPath != "":
			r, err := scenariogen.LoadRequest(reqPath)
			if err != nil {
				return err
			}
			req = r
		case demo:
			req = scenariogen.DemoRequest()
		default:
			return errors.New("either --request or --demo is required")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		events := s.EventRepo()

		var ai scenariogen.Generator
		if !noAI {
			provider, cfg, err := llm.NewProviderFromEnv(ctx, events)
			switch {
			case err != nil:
				fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
				fmt.Fprintln(os.Stderr, "Falling back to the template generator.")
			case cfg.Provider == "mock":
				fmt.Fprintln(os.Stderr, "Mock LLM provider selected; using the template generator.")
			default:
				ai = scenariogen.NewLLMGenerator(provider, scenariogen.DefaultConfig())
			}
		}

		svc := scenariogen.NewService(ai,
			scenariogen.WithCompiler(newCompiler(seed, cmd.Flags().Changed("seed"))),
			scenariogen.WithEventSink(events),
		)
		b, err := svc.Build(ctx, req)
		if err != nil {
			return err
		}

		if b.FallbackReason != "" && ai != nil {
			fmt.Fprintln(os.Stderr, "AI generation failed:", b.FallbackReason)
		}
		if err := saveScenario(ctx, s.ScenarioRepo(), b.Bundle); err != nil {
			return fmt.Errorf("save scenario: %w", err)
		}

		fmt.Printf("Generated %q (%s, %d concepts, %d passages)\n",
			b.Bundle.Title, b.Source, b.Ledger.Len(), b.Result.Graph.Len())
		fmt.Printf("Scenario ID: %s\n", b.Bundle.ID)
		printWarnings(b.Result.Warnings)

		if out != "" {
			if err := bundle.WriteFile(out, b.Bundle); err != nil {
				return fmt.Errorf("write bundle: %w", err)
			}
			fmt.Println("Bundle written to", out)
		}
		if descOut != "" {
			if err := scenario.Write(descOut, b.Description); err != nil {
				return fmt.Errorf("write description: %w", err)
			}
			fmt.Println("Description written to", descOut)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().String("request", "", "Generation request file (YAML)")
	generateCmd.Flags().Bool("demo", false, "Use the built-in demo request")
	generateCmd.Flags().String("out", "", "Also write the compiled bundle to this file")
	generateCmd.Flags().String("description", "", "Write the generated scenario description to this file")
	generateCmd.Flags().Bool("no-ai", false, "Skip the LLM and use the template generator")
	generateCmd.Flags().Uint64("seed", 0, "Seed for reproducible choice order")
}
