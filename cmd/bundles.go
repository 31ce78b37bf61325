package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/edquest/internal/bundle"
	"github.com/abhisek/edquest/internal/compiler"
	"github.com/abhisek/edquest/internal/store"
)

// saveScenario stores a compiled bundle for later replay.
func saveScenario(ctx context.Context, repo store.ScenarioRepo, sc *bundle.Scenario) error {
	data, err := bundle.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return repo.Save(ctx, &store.SavedScenario{
		ScenarioID:   sc.ID,
		Title:        sc.Title,
		Theme:        sc.Theme,
		Source:       sc.Source,
		ConceptCount: sc.Ledger.Len(),
		NodeCount:    sc.Graph.Len(),
		CreatedAt:    sc.CreatedAt,
		Bundle:       data,
	})
}

// loadSaved fetches a stored bundle by ID, or the latest one when id is
// empty.
func loadSaved(ctx context.Context, repo store.ScenarioRepo, id string) (*bundle.Scenario, error) {
	var (
		saved *store.SavedScenario
		err   error
	)
	if id != "" {
		saved, err = repo.Get(ctx, strings.ToUpper(id))
	} else {
		saved, err = repo.Latest(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	if saved == nil {
		if id != "" {
			return nil, fmt.Errorf("scenario %s not found", id)
		}
		return nil, fmt.Errorf("no saved scenarios; run 'edquest generate' or 'edquest compile --save' first")
	}
	sc, err := bundle.Unmarshal(saved.Bundle)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", saved.ScenarioID, err)
	}
	return sc, nil
}

// newCompiler honours --seed when it was given.
func newCompiler(seed uint64, seeded bool) *compiler.Compiler {
	if seeded {
		return compiler.New(compiler.WithShuffler(compiler.NewSeededShuffler(seed)))
	}
	return compiler.New()
}

func printWarnings(ws []compiler.Warning) {
	for _, w := range ws {
		fmt.Printf("  warning: %s\n", w)
	}
}
