/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"context"
	"fmt"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

// Metric name suffixes derived for every column condition.
const (
	ConditionSuffix       = ".condition"
	UnexpectedCountSuffix = ".unexpected_count"
	UnexpectedRowsSuffix  = ".unexpected_rows"
	TableRowCount         = "table.row_count"
	ColumnValues          = "column.values"
	columnKey             = "column"

	// MaxUnexpectedRowsKept caps the rows an unexpected rows metric keeps.
	MaxUnexpectedRowsKept = 1000
)

// PredicateBuilder compiles bound parameters into an element predicate.
// The predicate must be pure.
type PredicateBuilder func(params Params) (func(v any) bool, error)

// SQLPredicateBuilder compiles bound parameters into a boolean SQL
// expression over the (already quoted) column, with placeholder arguments.
type SQLPredicateBuilder func(column string, params Params) (string, []any, error)

// ColumnCondition declares a row predicate over a single column.
type ColumnCondition struct {
	// Name is the map metric stem, e.g. "column_values.in_set".
	Name string
	// ValueKeys are the predicate parameters besides "column".
	ValueKeys []string
	// Predicate evaluates elements on the memory and partitioned backends.
	Predicate PredicateBuilder
	// SQL evaluates the predicate in the database. Nil leaves the SQL
	// backend unimplemented.
	SQL SQLPredicateBuilder
}

// UnexpectedRows lists the rows failing a condition, in batch order. At
// most MaxUnexpectedRowsKept rows are kept; Total counts all of them.
type UnexpectedRows struct {
	Indices []int
	Values  []any
	Total   int
}

// ConditionRequest builds the condition request of a map metric stem.
func ConditionRequest(stem string, params Params) Request {
	return NewRequest(stem+ConditionSuffix, params)
}

// UnexpectedCountRequest builds the unexpected count request of a map metric stem.
func UnexpectedCountRequest(stem string, params Params) Request {
	return NewRequest(stem+UnexpectedCountSuffix, params)
}

// UnexpectedRowsRequest builds the unexpected rows request of a map metric stem.
func UnexpectedRowsRequest(stem string, params Params) Request {
	return NewRequest(stem+UnexpectedRowsSuffix, params)
}

// RowCountRequest builds the table row count request.
func RowCountRequest() Request {
	return NewRequest(TableRowCount, nil)
}

// RegisterColumnCondition registers the condition metric of c together with
// its derived unexpected count and unexpected rows metrics.
func RegisterColumnCondition(r *Registry, c ColumnCondition) error {
	keys := append([]string{columnKey}, c.ValueKeys...)
	condName := c.Name + ConditionSuffix

	strategies := map[execution.BackendKind]Strategy{
		execution.BackendMemory:      frameCondition(c.Predicate),
		execution.BackendPartitioned: partitionedCondition(c.Predicate),
	}
	if c.SQL != nil {
		strategies[execution.BackendSQL] = sqlCondition(c.SQL)
	}
	err := r.registerAll(Definition{
		Name:       condName,
		DomainKeys: []string{columnKey},
		ValueKeys:  c.ValueKeys,
	}, strategies)
	if err != nil {
		return err
	}

	condOf := func(params Params) Request {
		return NewRequest(condName, params.Subset(keys...))
	}

	err = r.registerAll(Definition{
		Name:       c.Name + UnexpectedCountSuffix,
		DomainKeys: []string{columnKey},
		ValueKeys:  c.ValueKeys,
		Dependencies: func(params Params) []Request {
			return []Request{condOf(params)}
		},
	}, everyBackend(func(_ context.Context, _ execution.Batch, params Params, deps Values) (any, error) {
		flags, err := conditionFlags(deps, condOf(params))
		if err != nil {
			return nil, err
		}
		n := 0
		for _, ok := range flags {
			if !ok {
				n++
			}
		}
		return n, nil
	}))
	if err != nil {
		return err
	}

	valuesOf := func(params Params) Request {
		return NewRequest(ColumnValues, params.Subset(columnKey))
	}
	rowStrategies := everyBackend(func(_ context.Context, _ execution.Batch, params Params, deps Values) (any, error) {
		flags, err := conditionFlags(deps, condOf(params))
		if err != nil {
			return nil, err
		}
		raw, err := deps.Must(valuesOf(params))
		if err != nil {
			return nil, err
		}
		values, ok := raw.([]any)
		if !ok || len(values) != len(flags) {
			return nil, fmt.Errorf("%w: column values do not line up with condition", errors.ErrInternal)
		}
		return collectUnexpected(flags, values), nil
	})
	if c.SQL != nil {
		// Flags and values come from one query, so rows pair up even when
		// the batch has no stable order.
		rowStrategies[execution.BackendSQL] = sqlUnexpectedRows(c.SQL)
	}
	return r.registerAll(Definition{
		Name:       c.Name + UnexpectedRowsSuffix,
		DomainKeys: []string{columnKey},
		ValueKeys:  c.ValueKeys,
		Dependencies: func(params Params) []Request {
			return []Request{condOf(params), valuesOf(params)}
		},
	}, rowStrategies)
}

func collectUnexpected(flags []bool, values []any) UnexpectedRows {
	var rows UnexpectedRows
	for i, ok := range flags {
		if ok {
			continue
		}
		rows.Total++
		if len(rows.Indices) < MaxUnexpectedRowsKept {
			rows.Indices = append(rows.Indices, i)
			rows.Values = append(rows.Values, values[i])
		}
	}
	return rows
}

func conditionFlags(deps Values, req Request) ([]bool, error) {
	raw, err := deps.Must(req)
	if err != nil {
		return nil, err
	}
	flags, ok := raw.([]bool)
	if !ok {
		return nil, fmt.Errorf("%w: condition %s returned %T", errors.ErrInternal, req.Name, raw)
	}
	return flags, nil
}

func registerTableMetrics(r *Registry) error {
	err := r.registerAll(Definition{Name: TableRowCount}, map[execution.BackendKind]Strategy{
		execution.BackendMemory: func(_ context.Context, batch execution.Batch, _ Params, _ Values) (any, error) {
			f, err := asFrame(batch)
			if err != nil {
				return nil, err
			}
			return f.RowCount(), nil
		},
		execution.BackendPartitioned: func(_ context.Context, batch execution.Batch, _ Params, _ Values) (any, error) {
			p, err := asPartitioned(batch)
			if err != nil {
				return nil, err
			}
			return p.RowCount(), nil
		},
		execution.BackendSQL: func(ctx context.Context, batch execution.Batch, _ Params, _ Values) (any, error) {
			b, err := asSQL(batch)
			if err != nil {
				return nil, err
			}
			v, err := b.QueryScalar(ctx, "COUNT(*)")
			if err != nil {
				return nil, err
			}
			n, _ := execution.Numeric(v)
			return int(n), nil
		},
	})
	if err != nil {
		return err
	}

	return r.registerAll(Definition{
		Name:       ColumnValues,
		DomainKeys: []string{columnKey},
	}, map[execution.BackendKind]Strategy{
		execution.BackendMemory: func(_ context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
			f, err := asFrame(batch)
			if err != nil {
				return nil, err
			}
			return frameColumn(f, params)
		},
		execution.BackendPartitioned: func(ctx context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
			p, err := asPartitioned(batch)
			if err != nil {
				return nil, err
			}
			parts, err := execution.MapPartitions(ctx, p, func(_ context.Context, f *execution.Frame) ([]any, error) {
				return frameColumn(f, params)
			})
			if err != nil {
				return nil, err
			}
			return concat(parts), nil
		},
		execution.BackendSQL: func(ctx context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
			b, err := asSQL(batch)
			if err != nil {
				return nil, err
			}
			column, err := params.String(columnKey)
			if err != nil {
				return nil, err
			}
			return b.QueryColumn(ctx, column)
		},
	})
}

func frameCondition(build PredicateBuilder) Strategy {
	return func(_ context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
		f, err := asFrame(batch)
		if err != nil {
			return nil, err
		}
		return evalCondition(f, params, build)
	}
}

func partitionedCondition(build PredicateBuilder) Strategy {
	return func(ctx context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
		p, err := asPartitioned(batch)
		if err != nil {
			return nil, err
		}
		parts, err := execution.MapPartitions(ctx, p, func(_ context.Context, f *execution.Frame) ([]bool, error) {
			return evalCondition(f, params, build)
		})
		if err != nil {
			return nil, err
		}
		return concat(parts), nil
	}
}

func sqlCondition(build SQLPredicateBuilder) Strategy {
	return func(ctx context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
		b, err := asSQL(batch)
		if err != nil {
			return nil, err
		}
		column, err := params.String(columnKey)
		if err != nil {
			return nil, err
		}
		expr, args, err := build(execution.QuoteIdent(column), params)
		if err != nil {
			return nil, err
		}
		return b.QueryBools(ctx, expr, args...)
	}
}

func sqlUnexpectedRows(build SQLPredicateBuilder) Strategy {
	return func(ctx context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
		b, err := asSQL(batch)
		if err != nil {
			return nil, err
		}
		column, err := params.String(columnKey)
		if err != nil {
			return nil, err
		}
		expr, args, err := build(execution.QuoteIdent(column), params)
		if err != nil {
			return nil, err
		}
		flags, values, err := b.QueryFlagged(ctx, column, expr, args...)
		if err != nil {
			return nil, err
		}
		return collectUnexpected(flags, values), nil
	}
}

func evalCondition(f *execution.Frame, params Params, build PredicateBuilder) ([]bool, error) {
	values, err := frameColumn(f, params)
	if err != nil {
		return nil, err
	}
	pred, err := build(params)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = pred(v)
	}
	return out, nil
}

func frameColumn(f *execution.Frame, params Params) ([]any, error) {
	column, err := params.String(columnKey)
	if err != nil {
		return nil, err
	}
	return f.Column(column)
}

func concat[T any](parts [][]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func asFrame(batch execution.Batch) (*execution.Frame, error) {
	f, ok := batch.(*execution.Frame)
	if !ok {
		return nil, fmt.Errorf("%w: memory strategy received %T", errors.ErrInternal, batch)
	}
	return f, nil
}

func asPartitioned(batch execution.Batch) (*execution.PartitionedFrame, error) {
	p, ok := batch.(*execution.PartitionedFrame)
	if !ok {
		return nil, fmt.Errorf("%w: partitioned strategy received %T", errors.ErrInternal, batch)
	}
	return p, nil
}

func asSQL(batch execution.Batch) (*execution.SQLBatch, error) {
	b, ok := batch.(*execution.SQLBatch)
	if !ok {
		return nil, fmt.Errorf("%w: sql strategy received %T", errors.ErrInternal, batch)
	}
	return b, nil
}
