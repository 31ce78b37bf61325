package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	llmEventsTable        = "llm_request_events"
	generationEventsTable = "generation_events"
	playthroughTable      = "playthrough_events"
	scenariosTable        = "saved_scenarios"
)

// eventColumns are shared by every event table: a surrogate key, the
// global sequence and a timestamp.
func eventColumns(extra ...*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, extra...)
}

func str(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Default: ""}
}

func text(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Size: 2147483647, Default: ""}
}

func integer(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt, Default: 0}
}

func boolean(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeBool, Default: false}
}

// eventTable builds a table with the event columns and an index on
// timestamp plus any extra indexed columns.
func eventTable(name string, cols []*schema.Column, indexed ...string) *schema.Table {
	t := &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
	}
	t.Indexes = append(t.Indexes, &schema.Index{
		Name:    name + "_timestamp",
		Columns: []*schema.Column{cols[2]},
	})
	for _, col := range indexed {
		for _, c := range cols {
			if c.Name == col {
				t.Indexes = append(t.Indexes, &schema.Index{
					Name:    name + "_" + col,
					Columns: []*schema.Column{c},
				})
			}
		}
	}
	return t
}

var tables = []*schema.Table{
	eventTable(llmEventsTable, eventColumns(
		str("provider"),
		str("model"),
		str("purpose"),
		integer("input_tokens"),
		integer("output_tokens"),
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		boolean("success"),
		text("error_message"),
		text("request_body"),
		text("response_body"),
	), "purpose", "model"),

	eventTable(generationEventsTable, eventColumns(
		str("theme"),
		str("source"),
		boolean("success"),
		text("error_message"),
		text("fallback_reason"),
		str("scenario_id"),
		integer("concept_count"),
		integer("node_count"),
		integer("warning_count"),
	), "scenario_id"),

	eventTable(playthroughTable, eventColumns(
		str("session_id"),
		str("scenario_id"),
		str("learner"),
		str("action"),
		integer("earned"),
		integer("total"),
		&schema.Column{Name: "percentage", Type: field.TypeFloat64, Default: 0},
		boolean("passed"),
		&schema.Column{Name: "breakdown", Type: field.TypeJSON, Nullable: true},
	), "session_id", "scenario_id"),

	scenarioTable(),
}

func scenarioTable() *schema.Table {
	cols := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "scenario_id", Type: field.TypeString, Unique: true},
		str("title"),
		str("theme"),
		str("source"),
		integer("concept_count"),
		integer("node_count"),
		{Name: "created_at", Type: field.TypeTime},
		{Name: "bundle", Type: field.TypeBytes},
	}
	return &schema.Table{
		Name:       scenariosTable,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{Name: scenariosTable + "_created_at", Columns: []*schema.Column{cols[7]}},
		},
	}
}

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, tables...)
}
