/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package execution

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLBatch is a table (optionally restricted by a WHERE clause) reachable
// through a database/sql handle.
type SQLBatch struct {
	id      string
	db      *sql.DB
	table   string
	where   string
	args    []any
	orderBy string
}

// SQLOption configures a SQLBatch
type SQLOption func(*SQLBatch)

// WithWhere restricts the batch to rows matching clause. Placeholders in
// clause are bound to args.
func WithWhere(clause string, args ...any) SQLOption {
	return func(b *SQLBatch) {
		b.where = clause
		b.args = args
	}
}

// WithOrderBy fixes the row order of row-level queries so results line up
// across queries (e.g. "rowid" for SQLite). expr is inserted verbatim;
// quote column names with QuoteIdent.
func WithOrderBy(expr string) SQLOption {
	return func(b *SQLBatch) {
		b.orderBy = expr
	}
}

// NewSQLBatch creates a batch over table.
func NewSQLBatch(id string, db *sql.DB, table string, opts ...SQLOption) *SQLBatch {
	b := &SQLBatch{id: id, db: db, table: table}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *SQLBatch) ID() string        { return b.id }
func (b *SQLBatch) Kind() BackendKind { return BackendSQL }

// Table returns the quoted table name.
func (b *SQLBatch) Table() string {
	return QuoteIdent(b.table)
}

// Where returns the restricting clause and its arguments.
func (b *SQLBatch) Where() (string, []any) {
	return b.where, b.args
}

// QueryScalar evaluates a single aggregate expression over the batch.
// extraArgs are bound before the WHERE clause arguments.
func (b *SQLBatch) QueryScalar(ctx context.Context, expr string, extraArgs ...any) (any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s%s", expr, b.Table(), b.whereClause())
	args := append(append([]any(nil), extraArgs...), b.args...)

	var out any
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&out); err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	if raw, ok := out.([]byte); ok {
		out = string(raw)
	}
	return out, nil
}

// QueryBools evaluates a boolean row expression for every row of the batch.
// NULL results count as false.
func (b *SQLBatch) QueryBools(ctx context.Context, predicate string, extraArgs ...any) ([]bool, error) {
	expr := fmt.Sprintf("CASE WHEN %s THEN 1 ELSE 0 END", predicate)
	rows, err := b.queryRows(ctx, expr, extraArgs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bool
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v == 1)
	}
	return out, rows.Err()
}

// QueryColumn returns the values of one column, in batch order.
func (b *SQLBatch) QueryColumn(ctx context.Context, column string) ([]any, error) {
	rows, err := b.queryRows(ctx, QuoteIdent(column), nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if raw, ok := v.([]byte); ok {
			v = string(raw)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// QueryFlagged returns the values of column together with the result of a
// boolean row expression, read from the same rows.
func (b *SQLBatch) QueryFlagged(ctx context.Context, column, predicate string, extraArgs ...any) ([]bool, []any, error) {
	expr := fmt.Sprintf("%s, CASE WHEN %s THEN 1 ELSE 0 END", QuoteIdent(column), predicate)
	rows, err := b.queryRows(ctx, expr, extraArgs)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		flags  []bool
		values []any
	)
	for rows.Next() {
		var (
			v    any
			flag int
		)
		if err := rows.Scan(&v, &flag); err != nil {
			return nil, nil, err
		}
		if raw, ok := v.([]byte); ok {
			v = string(raw)
		}
		flags = append(flags, flag == 1)
		values = append(values, v)
	}
	return flags, values, rows.Err()
}

func (b *SQLBatch) queryRows(ctx context.Context, expr string, extraArgs []any) (*sql.Rows, error) {
	query := fmt.Sprintf("SELECT %s FROM %s%s", expr, b.Table(), b.whereClause())
	if b.orderBy != "" {
		query += " ORDER BY " + b.orderBy
	}
	args := append(append([]any(nil), extraArgs...), b.args...)
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	return rows, nil
}

func (b *SQLBatch) whereClause() string {
	if b.where == "" {
		return ""
	}
	return " WHERE " + b.where
}

// QuoteIdent quotes an SQL identifier with double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
