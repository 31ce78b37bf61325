package store

import (
	"context"
	"database/sql"
	"fmt"
)

var generationColumns = []string{
	"theme", "source", "success", "error_message", "fallback_reason",
	"scenario_id", "concept_count", "node_count", "warning_count",
}

func (r *eventRepo) AppendGeneration(ctx context.Context, data GenerationEventData) error {
	err := r.append(ctx, generationEventsTable, generationColumns, []any{
		data.Theme,
		data.Source,
		data.Success,
		data.ErrorMessage,
		data.FallbackReason,
		data.ScenarioID,
		data.ConceptCount,
		data.NodeCount,
		data.WarningCount,
	})
	if err != nil {
		return fmt.Errorf("save generation event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error) {
	var events []GenerationEvent
	err := queryRows(ctx, r.db, selectEvents(generationEventsTable, opts, generationColumns), func(rows *sql.Rows) error {
		var e GenerationEvent
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp,
			&e.Theme, &e.Source, &e.Success, &e.ErrorMessage, &e.FallbackReason,
			&e.ScenarioID, &e.ConceptCount, &e.NodeCount, &e.WarningCount,
		)
		if err != nil {
			return err
		}
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}
	return events, nil
}
