/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"context"
	"fmt"
	"math"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

// Column aggregate metric names.
const (
	ColumnSum          = "column.sum"
	ColumnNonNullCount = "column.nonnull_count"
	ColumnMin          = "column.min"
	ColumnMax          = "column.max"
	ColumnMean         = "column.mean"
)

// ColumnRequest builds a request for a column aggregate.
func ColumnRequest(metric, column string) Request {
	return NewRequest(metric, Params{columnKey: column})
}

type reducer struct {
	// fold computes the partial aggregate of one frame's column.
	fold func(values []any) (any, error)
	// combine merges partial aggregates of partitions.
	combine func(parts []any) any
	// sql is the aggregate expression; %s receives the quoted column.
	sql string
}

func registerAggregates(r *Registry) error {
	reducers := map[string]reducer{
		ColumnNonNullCount: {
			fold: func(values []any) (any, error) {
				n := 0
				for _, v := range values {
					if v != nil {
						n++
					}
				}
				return n, nil
			},
			combine: func(parts []any) any {
				n := 0
				for _, p := range parts {
					n += p.(int)
				}
				return n
			},
			sql: "COUNT(%s)",
		},
		ColumnSum: {
			fold: func(values []any) (any, error) {
				sum := 0.0
				err := eachNumber(values, func(f float64) { sum += f })
				return sum, err
			},
			combine: func(parts []any) any {
				sum := 0.0
				for _, p := range parts {
					sum += p.(float64)
				}
				return sum
			},
			sql: "COALESCE(SUM(%s), 0)",
		},
		ColumnMin: {
			fold: func(values []any) (any, error) {
				return extreme(values, math.Min)
			},
			combine: func(parts []any) any {
				return combineExtreme(parts, math.Min)
			},
			sql: "MIN(%s)",
		},
		ColumnMax: {
			fold: func(values []any) (any, error) {
				return extreme(values, math.Max)
			},
			combine: func(parts []any) any {
				return combineExtreme(parts, math.Max)
			},
			sql: "MAX(%s)",
		},
	}

	for name, red := range reducers {
		err := r.registerAll(Definition{Name: name, DomainKeys: []string{columnKey}}, map[execution.BackendKind]Strategy{
			execution.BackendMemory:      frameAggregate(red),
			execution.BackendPartitioned: partitionedAggregate(red),
			execution.BackendSQL:         sqlAggregate(red),
		})
		if err != nil {
			return err
		}
	}

	sumOf := func(params Params) Request { return NewRequest(ColumnSum, params.Subset(columnKey)) }
	countOf := func(params Params) Request { return NewRequest(ColumnNonNullCount, params.Subset(columnKey)) }
	return r.registerAll(Definition{
		Name:       ColumnMean,
		DomainKeys: []string{columnKey},
		Dependencies: func(params Params) []Request {
			return []Request{sumOf(params), countOf(params)}
		},
	}, everyBackend(func(_ context.Context, _ execution.Batch, params Params, deps Values) (any, error) {
		sum, err := deps.Must(sumOf(params))
		if err != nil {
			return nil, err
		}
		count, err := deps.Must(countOf(params))
		if err != nil {
			return nil, err
		}
		n, _ := execution.Numeric(count)
		if n == 0 {
			return nil, nil
		}
		s, _ := execution.Numeric(sum)
		return s / n, nil
	}))
}

func frameAggregate(red reducer) Strategy {
	return func(_ context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
		f, err := asFrame(batch)
		if err != nil {
			return nil, err
		}
		values, err := frameColumn(f, params)
		if err != nil {
			return nil, err
		}
		return red.fold(values)
	}
}

func partitionedAggregate(red reducer) Strategy {
	return func(ctx context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
		p, err := asPartitioned(batch)
		if err != nil {
			return nil, err
		}
		parts, err := execution.MapPartitions(ctx, p, func(_ context.Context, f *execution.Frame) (any, error) {
			values, err := frameColumn(f, params)
			if err != nil {
				return nil, err
			}
			return red.fold(values)
		})
		if err != nil {
			return nil, err
		}
		return red.combine(parts), nil
	}
}

func sqlAggregate(red reducer) Strategy {
	return func(ctx context.Context, batch execution.Batch, params Params, _ Values) (any, error) {
		b, err := asSQL(batch)
		if err != nil {
			return nil, err
		}
		column, err := params.String(columnKey)
		if err != nil {
			return nil, err
		}
		v, err := b.QueryScalar(ctx, fmt.Sprintf(red.sql, execution.QuoteIdent(column)))
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		if red.sql == "COUNT(%s)" {
			n, _ := execution.Numeric(v)
			return int(n), nil
		}
		f, ok := execution.Numeric(v)
		if !ok {
			return nil, errors.NewValidationError(column, fmt.Sprintf("aggregate is not numeric: %v", v))
		}
		return f, nil
	}
}

func eachNumber(values []any, fn func(float64)) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		f, ok := execution.Numeric(v)
		if !ok {
			return errors.NewValidationError("column", fmt.Sprintf("row %d is not numeric: %v", i, v))
		}
		fn(f)
	}
	return nil
}

func extreme(values []any, pick func(a, b float64) float64) (any, error) {
	var (
		out  float64
		seen bool
	)
	err := eachNumber(values, func(f float64) {
		if !seen {
			out, seen = f, true
			return
		}
		out = pick(out, f)
	})
	if err != nil || !seen {
		return nil, err
	}
	return out, nil
}

func combineExtreme(parts []any, pick func(a, b float64) float64) any {
	var (
		out  float64
		seen bool
	)
	for _, p := range parts {
		f, ok := p.(float64)
		if !ok {
			continue
		}
		if !seen {
			out, seen = f, true
			continue
		}
		out = pick(out, f)
	}
	if !seen {
		return nil
	}
	return out
}
