/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expectation

import (
	"fmt"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
	"github.com/suparena/datacheck/metrics"
)

var rangeKeys = []string{KeyMinValue, KeyMaxValue, KeyStrictMin, KeyStrictMax}

func rangeDefaults() map[string]any {
	return map[string]any{
		KeyMinValue:  nil,
		KeyMaxValue:  nil,
		KeyStrictMin: false,
		KeyStrictMax: false,
	}
}

// ColumnAggregateExpectation asserts that a column aggregate (column.max,
// column.mean, ...) falls within [min_value, max_value].
type ColumnAggregateExpectation struct {
	base
	metric string
}

// NewColumnAggregateExpectation declares an aggregate expectation over metric.
func NewColumnAggregateExpectation(name, metric string, examples ...Example) *ColumnAggregateExpectation {
	return &ColumnAggregateExpectation{
		base: base{
			name:     name,
			domain:   []string{KeyColumn},
			success:  rangeKeys,
			defaults: rangeDefaults(),
			examples: examples,
		},
		metric: metric,
	}
}

func (e *ColumnAggregateExpectation) request(cfg Configuration) (metrics.Request, error) {
	column := cfg.Column()
	if column == "" {
		return metrics.Request{}, errors.NewMissingParameterError(e.name, KeyColumn)
	}
	return metrics.ColumnRequest(e.metric, column), nil
}

func (e *ColumnAggregateExpectation) Dependencies(cfg Configuration) ([]metrics.Request, error) {
	if _, err := parseRange(cfg); err != nil {
		return nil, err
	}
	req, err := e.request(cfg)
	if err != nil {
		return nil, err
	}
	return []metrics.Request{req}, nil
}

func (e *ColumnAggregateExpectation) Interpret(cfg Configuration, values metrics.Values) (Outcome, error) {
	req, err := e.request(cfg)
	if err != nil {
		return Outcome{}, err
	}
	return interpretRange(cfg, values, req)
}

// TableExpectation asserts that a table-level metric falls within
// [min_value, max_value].
type TableExpectation struct {
	base
	request metrics.Request
}

// NewTableExpectation declares a table expectation over req.
func NewTableExpectation(name string, req metrics.Request, examples ...Example) *TableExpectation {
	return &TableExpectation{
		base: base{
			name:     name,
			success:  rangeKeys,
			defaults: rangeDefaults(),
			examples: examples,
		},
		request: req,
	}
}

func (e *TableExpectation) Dependencies(cfg Configuration) ([]metrics.Request, error) {
	if _, err := parseRange(cfg); err != nil {
		return nil, err
	}
	return []metrics.Request{e.request}, nil
}

func (e *TableExpectation) Interpret(cfg Configuration, values metrics.Values) (Outcome, error) {
	return interpretRange(cfg, values, e.request)
}

type valueRange struct {
	min, max             float64
	hasMin, hasMax       bool
	strictMin, strictMax bool
}

func parseRange(cfg Configuration) (valueRange, error) {
	var r valueRange
	if v := cfg.Kwargs[KeyMinValue]; v != nil {
		f, ok := execution.Numeric(v)
		if !ok {
			return r, errors.NewValidationError(KeyMinValue, fmt.Sprintf("must be numeric, got %T", v))
		}
		r.min, r.hasMin = f, true
	}
	if v := cfg.Kwargs[KeyMaxValue]; v != nil {
		f, ok := execution.Numeric(v)
		if !ok {
			return r, errors.NewValidationError(KeyMaxValue, fmt.Sprintf("must be numeric, got %T", v))
		}
		r.max, r.hasMax = f, true
	}
	if !r.hasMin && !r.hasMax {
		return r, errors.NewValidationError("", "min_value and max_value cannot both be unset")
	}
	if r.hasMin && r.hasMax && r.min > r.max {
		return r, errors.NewValidationError(KeyMinValue, "must not exceed max_value")
	}
	r.strictMin, _ = cfg.Kwargs[KeyStrictMin].(bool)
	r.strictMax, _ = cfg.Kwargs[KeyStrictMax].(bool)
	return r, nil
}

func (r valueRange) holds(f float64) bool {
	if r.hasMin && (f < r.min || (r.strictMin && f == r.min)) {
		return false
	}
	if r.hasMax && (f > r.max || (r.strictMax && f == r.max)) {
		return false
	}
	return true
}

func interpretRange(cfg Configuration, values metrics.Values, req metrics.Request) (Outcome, error) {
	r, err := parseRange(cfg)
	if err != nil {
		return Outcome{}, err
	}
	observed, err := values.Must(req)
	if err != nil {
		return Outcome{}, err
	}
	// An aggregate over no values has nothing to compare.
	f, ok := execution.Numeric(observed)
	out := Outcome{Success: ok && r.holds(f)}
	if FormatOf(cfg) != BooleanOnly {
		out.Result.ObservedValue = observed
	}
	return out, nil
}
