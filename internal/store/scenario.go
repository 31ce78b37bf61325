package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var scenarioListColumns = []string{
	"id", "scenario_id", "title", "theme", "source",
	"concept_count", "node_count", "created_at",
}

// scenarioRepo implements ScenarioRepo.
type scenarioRepo struct {
	db *sql.DB
}

// ErrDuplicateScenario is returned by Save when the scenario ID exists.
var ErrDuplicateScenario = errors.New("scenario already saved")

func (r *scenarioRepo) Save(ctx context.Context, sc *SavedScenario) error {
	if sc.ScenarioID == "" {
		return fmt.Errorf("save scenario: empty scenario ID")
	}
	existing, err := r.Get(ctx, sc.ScenarioID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("save scenario %s: %w", sc.ScenarioID, ErrDuplicateScenario)
	}

	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}
	query, args := sqlite.Insert(scenariosTable).
		Columns(append(scenarioListColumns[1:], "bundle")...).
		Values(sc.ScenarioID, sc.Title, sc.Theme, sc.Source,
			sc.ConceptCount, sc.NodeCount, sc.CreatedAt.UTC(), sc.Bundle).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	sc.ID = int(id)
	return nil
}

func scenarioDest(sc *SavedScenario) []any {
	return []any{
		&sc.ID, &sc.ScenarioID, &sc.Title, &sc.Theme, &sc.Source,
		&sc.ConceptCount, &sc.NodeCount, &sc.CreatedAt,
	}
}

func (r *scenarioRepo) one(ctx context.Context, sel *entsql.Selector) (*SavedScenario, error) {
	var sc SavedScenario
	found, err := queryOne(ctx, r.db, sel, append(scenarioDest(&sc), &sc.Bundle)...)
	if err != nil || !found {
		return nil, err
	}
	return &sc, nil
}

func (r *scenarioRepo) Get(ctx context.Context, scenarioID string) (*SavedScenario, error) {
	sc, err := r.one(ctx, sqlite.Select(append(scenarioListColumns, "bundle")...).
		From(sqlite.Table(scenariosTable)).
		Where(entsql.EQ("scenario_id", scenarioID)))
	if err != nil {
		return nil, fmt.Errorf("get scenario %s: %w", scenarioID, err)
	}
	return sc, nil
}

func (r *scenarioRepo) Latest(ctx context.Context) (*SavedScenario, error) {
	sc, err := r.one(ctx, sqlite.Select(append(scenarioListColumns, "bundle")...).
		From(sqlite.Table(scenariosTable)).
		OrderBy(entsql.Desc("id")))
	if err != nil {
		return nil, fmt.Errorf("query latest scenario: %w", err)
	}
	return sc, nil
}

func (r *scenarioRepo) List(ctx context.Context, limit int) ([]SavedScenario, error) {
	sel := sqlite.Select(scenarioListColumns...).
		From(sqlite.Table(scenariosTable)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	var out []SavedScenario
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var sc SavedScenario
		if err := rows.Scan(scenarioDest(&sc)...); err != nil {
			return err
		}
		out = append(out, sc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return out, nil
}

func (r *scenarioRepo) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("prune scenarios: keep must be >= 0, got %d", keep)
	}

	// The keep-th newest row is the cut-off; everything older goes.
	var threshold int
	found, err := queryOne(ctx, r.db, sqlite.Select("id").
		From(sqlite.Table(scenariosTable)).
		OrderBy(entsql.Desc("id")).
		Offset(keep), &threshold)
	if err != nil {
		return 0, fmt.Errorf("query scenarios for prune: %w", err)
	}
	if !found {
		return 0, nil
	}

	query, args := sqlite.Delete(scenariosTable).
		Where(entsql.LTE("id", threshold)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune scenarios: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune scenarios: %w", err)
	}
	return int(n), nil
}
