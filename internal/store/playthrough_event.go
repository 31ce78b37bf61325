package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var playthroughColumns = []string{
	"session_id", "scenario_id", "learner", "action",
	"earned", "total", "percentage", "passed", "breakdown",
}

func (r *eventRepo) AppendPlaythrough(ctx context.Context, data PlaythroughEventData) error {
	var breakdown any
	if len(data.Breakdown) > 0 {
		b, err := json.Marshal(data.Breakdown)
		if err != nil {
			return fmt.Errorf("marshal breakdown: %w", err)
		}
		breakdown = string(b)
	}

	err := r.append(ctx, playthroughTable, playthroughColumns, []any{
		data.SessionID,
		data.ScenarioID,
		data.Learner,
		data.Action,
		data.Earned,
		data.Total,
		data.Percentage,
		data.Passed,
		breakdown,
	})
	if err != nil {
		return fmt.Errorf("save playthrough event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryPlaythroughs(ctx context.Context, opts QueryOpts) ([]PlaythroughEvent, error) {
	return r.queryPlaythroughs(ctx, selectEvents(playthroughTable, opts, playthroughColumns))
}

// SessionPlaythroughs returns every event of one session, oldest first.
func (r *eventRepo) SessionPlaythroughs(ctx context.Context, sessionID string) ([]PlaythroughEvent, error) {
	sel := sqlite.Select(withMeta(playthroughColumns)...).
		From(sqlite.Table(playthroughTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence")
	return r.queryPlaythroughs(ctx, sel)
}

func (r *eventRepo) queryPlaythroughs(ctx context.Context, sel *entsql.Selector) ([]PlaythroughEvent, error) {
	var events []PlaythroughEvent
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			e         PlaythroughEvent
			breakdown sql.NullString
		)
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp,
			&e.SessionID, &e.ScenarioID, &e.Learner, &e.Action,
			&e.Earned, &e.Total, &e.Percentage, &e.Passed, &breakdown,
		)
		if err != nil {
			return err
		}
		if breakdown.Valid && breakdown.String != "" {
			if err := json.Unmarshal([]byte(breakdown.String), &e.Breakdown); err != nil {
				return fmt.Errorf("event %d breakdown: %w", e.ID, err)
			}
		}
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query playthrough events: %w", err)
	}
	return events, nil
}
