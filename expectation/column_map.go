/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expectation

import (
	"fmt"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/metrics"
)

// ColumnMapExpectation asserts that the rows of a column satisfy a row
// condition, for at least a "mostly" fraction of them.
type ColumnMapExpectation struct {
	base
	condition string
	valueKeys []string
}

// NewColumnMapExpectation declares a map expectation delegating to the
// condition metric stem. valueKeys are forwarded to the metric; defaults
// may bind some of them.
func NewColumnMapExpectation(name, condition string, valueKeys []string, defaults map[string]any, examples ...Example) *ColumnMapExpectation {
	d := map[string]any{KeyMostly: 1.0}
	for k, v := range defaults {
		d[k] = v
	}
	return &ColumnMapExpectation{
		base: base{
			name:     name,
			domain:   []string{KeyColumn},
			success:  append(append([]string(nil), valueKeys...), KeyMostly),
			defaults: d,
			examples: examples,
		},
		condition: condition,
		valueKeys: valueKeys,
	}
}

// Condition returns the metric stem the expectation delegates to.
func (e *ColumnMapExpectation) Condition() string {
	return e.condition
}

func (e *ColumnMapExpectation) metricParams(cfg Configuration) (metrics.Params, error) {
	column := cfg.Column()
	if column == "" {
		return nil, errors.NewMissingParameterError(e.name, KeyColumn)
	}
	params := metrics.Params{KeyColumn: column}
	for _, k := range e.valueKeys {
		if v, ok := cfg.Kwargs[k]; ok && v != nil {
			params[k] = v
		}
	}
	return params, nil
}

func (e *ColumnMapExpectation) Dependencies(cfg Configuration) ([]metrics.Request, error) {
	params, err := e.metricParams(cfg)
	if err != nil {
		return nil, err
	}
	reqs := []metrics.Request{
		metrics.RowCountRequest(),
		metrics.UnexpectedCountRequest(e.condition, params),
	}
	if FormatOf(cfg) != BooleanOnly {
		reqs = append(reqs, metrics.UnexpectedRowsRequest(e.condition, params))
	}
	return reqs, nil
}

func (e *ColumnMapExpectation) Interpret(cfg Configuration, values metrics.Values) (Outcome, error) {
	params, err := e.metricParams(cfg)
	if err != nil {
		return Outcome{}, err
	}
	n, err := intValue(values, metrics.RowCountRequest())
	if err != nil {
		return Outcome{}, err
	}
	unexpected, err := intValue(values, metrics.UnexpectedCountRequest(e.condition, params))
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Success: MapSuccess(n, unexpected, cfg.Mostly())}
	format := FormatOf(cfg)
	if format == BooleanOnly {
		return out, nil
	}

	out.Result.ElementCount = intPtr(n)
	out.Result.UnexpectedCount = intPtr(unexpected)
	if n > 0 {
		out.Result.UnexpectedPercent = floatPtr(100 * float64(unexpected) / float64(n))
	}

	raw, err := values.Must(metrics.UnexpectedRowsRequest(e.condition, params))
	if err != nil {
		return Outcome{}, err
	}
	rows, ok := raw.(metrics.UnexpectedRows)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: unexpected rows of %s have type %T", errors.ErrInternal, e.name, raw)
	}
	k := min(partialUnexpectedCount, len(rows.Values))
	out.Result.PartialUnexpectedList = rows.Values[:k]
	if format == Summary || format == Complete {
		out.Result.PartialUnexpectedIndexList = rows.Indices[:k]
	}
	if format == Complete {
		out.Result.UnexpectedList = rows.Values
		out.Result.UnexpectedIndexList = rows.Indices
		out.Result.UnexpectedListTruncated = rows.Total > len(rows.Values)
	}
	return out, nil
}

// MapSuccess applies the map expectation rule: an empty batch passes,
// otherwise the satisfying fraction must reach mostly.
func MapSuccess(elements, unexpected int, mostly float64) bool {
	if elements == 0 {
		return true
	}
	return float64(elements-unexpected)/float64(elements) >= mostly
}

func intValue(values metrics.Values, req metrics.Request) (int, error) {
	raw, err := values.Must(req)
	if err != nil {
		return 0, err
	}
	n, ok := raw.(int)
	if !ok {
		return 0, fmt.Errorf("%w: metric %s returned %T, want int", errors.ErrInternal, req.Name, raw)
	}
	return n, nil
}
