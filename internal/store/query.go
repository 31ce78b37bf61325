package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var sqlite = entsql.Dialect(dialect.SQLite)

// withMeta prefixes the columns every event table shares.
func withMeta(columns []string) []string {
	return append([]string{"id", "sequence", "timestamp"}, columns...)
}

// selectEvents builds a newest-first query over an event table.
func selectEvents(table string, opts QueryOpts, columns []string) *entsql.Selector {
	sel := sqlite.Select(withMeta(columns)...).
		From(sqlite.Table(table))
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

// eventRepo implements EventRepo on the shared sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// append inserts one event row, stamping sequence and timestamp.
func (r *eventRepo) append(ctx context.Context, table string, columns []string, values []any) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := sqlite.Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seq, time.Now().UTC()}, values...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// queryRows runs sel and calls scan once per row.
func queryRows(ctx context.Context, db *sql.DB, sel *entsql.Selector, scan func(*sql.Rows) error) error {
	query, args := sel.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// queryOne is queryRows for at most one row. It reports whether a row was
// found.
func queryOne(ctx context.Context, db *sql.DB, sel *entsql.Selector, dest ...any) (bool, error) {
	query, args := sel.Limit(1).Query()
	err := db.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
