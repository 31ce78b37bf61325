package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.append(ctx, llmEventsTable, llmEventColumns, []any{
		data.Provider,
		data.Model,
		data.Purpose,
		data.InputTokens,
		data.OutputTokens,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		data.RequestBody,
		data.ResponseBody,
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func llmEventDest(e *LLMRequestEvent) []any {
	return []any{
		&e.ID, &e.Sequence, &e.Timestamp,
		&e.Provider, &e.Model, &e.Purpose, &e.InputTokens, &e.OutputTokens,
		&e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
	}
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	var events []LLMRequestEvent
	err := queryRows(ctx, r.db, selectEvents(llmEventsTable, opts, llmEventColumns), func(rows *sql.Rows) error {
		var e LLMRequestEvent
		if err := rows.Scan(llmEventDest(&e)...); err != nil {
			return err
		}
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error) {
	var e LLMRequestEvent
	sel := selectEvents(llmEventsTable, QueryOpts{}, llmEventColumns).Where(entsql.EQ("id", id))
	found, err := queryOne(ctx, r.db, sel, llmEventDest(&e)...)
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &e, nil
}

// Aggregates are plain SQL; they read more clearly than the builder
// equivalent.
const (
	usageByPurposeSQL = `SELECT purpose, COUNT(*), COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0), CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
		FROM ` + llmEventsTable + ` GROUP BY purpose ORDER BY purpose`

	usageByModelSQL = `SELECT model, COUNT(*), COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0)
		FROM ` + llmEventsTable + ` WHERE success = 1 GROUP BY model ORDER BY model`
)

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	rows, err := r.db.QueryContext(ctx, usageByPurposeSQL)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage by purpose: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	rows, err := r.db.QueryContext(ctx, usageByModelSQL)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage by model: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
