/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expectation

import (
	"github.com/suparena/datacheck/execution"
	"github.com/suparena/datacheck/metrics"
)

// Built-in expectation types.
const (
	IPAddressInNetwork   = "expect_column_values_ip_address_in_network"
	ValuesNotNull        = "expect_column_values_to_not_be_null"
	ValuesBetween        = "expect_column_values_to_be_between"
	ValuesInSet          = "expect_column_values_to_be_in_set"
	ValuesMatchRegex     = "expect_column_values_to_match_regex"
	ColumnMaxBetween     = "expect_column_max_to_be_between"
	ColumnMinBetween     = "expect_column_min_to_be_between"
	ColumnMeanBetween    = "expect_column_mean_to_be_between"
	TableRowCountBetween = "expect_table_row_count_to_be_between"
)

var localOnly = []execution.BackendKind{execution.BackendMemory, execution.BackendPartitioned}

func init() {
	Register(NewColumnMapExpectation(IPAddressInNetwork, metrics.IPAddressInNetwork,
		[]string{"ip_network"}, nil, ipExamples()...))
	Register(NewColumnMapExpectation(ValuesNotNull, metrics.NonNull,
		nil, nil, notNullExamples()...))
	Register(NewColumnMapExpectation(ValuesBetween, metrics.Between,
		rangeKeys, rangeDefaults(), betweenExamples()...))
	Register(NewColumnMapExpectation(ValuesInSet, metrics.InSet,
		[]string{"value_set"}, nil, inSetExamples()...))
	Register(NewColumnMapExpectation(ValuesMatchRegex, metrics.MatchRegex,
		[]string{"regex"}, nil, regexExamples()...))

	Register(NewColumnAggregateExpectation(ColumnMaxBetween, metrics.ColumnMax, aggregateExamples(10, 4)...))
	Register(NewColumnAggregateExpectation(ColumnMinBetween, metrics.ColumnMin, aggregateExamples(-2, 1)...))
	Register(NewColumnAggregateExpectation(ColumnMeanBetween, metrics.ColumnMean, aggregateExamples(3.25, 1.5)...))
	Register(NewTableExpectation(TableRowCountBetween, metrics.RowCountRequest(), aggregateExamples(5, 4)...))
}

func ipExamples() []Example {
	return []Example{{
		Columns: []string{"all_in", "some_other"},
		Data: map[string][]any{
			"all_in":     {"192.168.0.0", "192.168.0.1", "192.168.0.2", "192.168.0.3", "192.168.0.254"},
			"some_other": {"213.181.199.16", "213.181.199.16", "213.181.199.16", "213.181.199.16", "142.250.180.206"},
		},
		Tests: []ExampleTest{
			{
				Title:           "basic_positive_test",
				Kwargs:          map[string]any{"column": "all_in", "ip_network": []any{"192.168.0.0/24", "54.33.0.0/17"}},
				Success:         true,
				UnexpectedCount: intPtr(0),
				Backends:        localOnly,
			},
			{
				Title:           "basic_negative_test",
				Kwargs:          map[string]any{"column": "some_other", "ip_network": []any{"192.168.0.0/24"}, "mostly": 0.9},
				Success:         false,
				UnexpectedCount: intPtr(5),
				Backends:        localOnly,
			},
			{
				Title:    "mostly_tolerates_one_miss",
				Kwargs:   map[string]any{"column": "some_other", "ip_network": []any{"213.181.0.0/16"}, "mostly": 0.8},
				Success:  true,
				Backends: localOnly,
			},
		},
	}}
}

func notNullExamples() []Example {
	return []Example{{
		Columns: []string{"full", "gappy"},
		Data: map[string][]any{
			"full":  {1, 2, 3, 4},
			"gappy": {"a", nil, "c", "d"},
		},
		Tests: []ExampleTest{
			{Title: "no_nulls", Kwargs: map[string]any{"column": "full"}, Success: true, UnexpectedCount: intPtr(0)},
			{Title: "one_null", Kwargs: map[string]any{"column": "gappy"}, Success: false, UnexpectedCount: intPtr(1)},
			{Title: "one_null_mostly", Kwargs: map[string]any{"column": "gappy", "mostly": 0.75}, Success: true},
		},
	}}
}

func betweenExamples() []Example {
	return []Example{{
		Columns: []string{"x"},
		Data:    map[string][]any{"x": {1, 2, 3, 4, 5}},
		Tests: []ExampleTest{
			{Title: "inclusive", Kwargs: map[string]any{"column": "x", "min_value": 1, "max_value": 5}, Success: true},
			{Title: "strict_bounds", Kwargs: map[string]any{"column": "x", "min_value": 1, "max_value": 5, "strict_min": true, "strict_max": true}, Success: false, UnexpectedCount: intPtr(2)},
			{Title: "open_max", Kwargs: map[string]any{"column": "x", "min_value": 3}, Success: false, UnexpectedCount: intPtr(2)},
			{Title: "open_max_mostly", Kwargs: map[string]any{"column": "x", "min_value": 3, "mostly": 0.6}, Success: true},
		},
	}}
}

func inSetExamples() []Example {
	return []Example{{
		Columns: []string{"status"},
		Data:    map[string][]any{"status": {"ok", "ok", "late", "lost"}},
		Tests: []ExampleTest{
			{Title: "all_known", Kwargs: map[string]any{"column": "status", "value_set": []any{"ok", "late", "lost"}}, Success: true},
			{Title: "one_unknown", Kwargs: map[string]any{"column": "status", "value_set": []any{"ok", "late"}}, Success: false, UnexpectedCount: intPtr(1)},
		},
	}}
}

func regexExamples() []Example {
	return []Example{{
		Columns: []string{"code"},
		Data:    map[string][]any{"code": {"ab-1", "ab-22", "cd-3"}},
		Tests: []ExampleTest{
			{Title: "all_match", Kwargs: map[string]any{"column": "code", "regex": `^[a-z]{2}-\d+$`}, Success: true, Backends: localOnly},
			{Title: "prefix", Kwargs: map[string]any{"column": "code", "regex": `^ab`}, Success: false, UnexpectedCount: intPtr(1), Backends: localOnly},
		},
	}}
}

// aggregateExamples builds fixtures over x = {-2, 1, 4, 10, nil}; observed
// is the value the aggregate takes on it, other is any different value.
func aggregateExamples(observed, other float64) []Example {
	return []Example{{
		Columns: []string{"x"},
		Data:    map[string][]any{"x": {-2, 1, 4, 10, nil}},
		Tests: []ExampleTest{
			{Title: "exact", Kwargs: map[string]any{"column": "x", "min_value": observed, "max_value": observed}, Success: true},
			{Title: "open_min", Kwargs: map[string]any{"column": "x", "max_value": observed}, Success: true},
			{Title: "strict_max", Kwargs: map[string]any{"column": "x", "max_value": observed, "strict_max": true}, Success: false},
			{Title: "other_value", Kwargs: map[string]any{"column": "x", "min_value": other, "max_value": other}, Success: observed == other},
		},
	}}
}
