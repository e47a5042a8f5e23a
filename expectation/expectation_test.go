/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expectation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/metrics"
)

func TestBind(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := NewConfiguration(IPAddressInNetwork, map[string]any{
			"column":     "ip",
			"ip_network": []any{"10.0.0.0/8"},
		})
		bound, e, err := Bind(cfg)
		require.NoError(t, err)
		assert.Equal(t, IPAddressInNetwork, e.Type())
		assert.Equal(t, 1.0, bound.Kwargs[KeyMostly])
		assert.Equal(t, "SUMMARY", bound.Kwargs[KeyResultFormat])
		assert.NotContains(t, cfg.Kwargs, KeyMostly)
	})

	tests := []struct {
		name  string
		cfg   Configuration
		check func(error) bool
	}{
		{
			name:  "missing success key",
			cfg:   NewConfiguration(IPAddressInNetwork, map[string]any{"column": "ip"}),
			check: errors.IsMissingParameter,
		},
		{
			name:  "missing column",
			cfg:   NewConfiguration(ValuesNotNull, map[string]any{}),
			check: errors.IsMissingParameter,
		},
		{
			name: "unresolved parameter",
			cfg: NewConfiguration(ValuesNotNull, map[string]any{
				"column": "id",
				"mostly": map[string]any{ParameterRef: "threshold"},
			}),
			check: errors.IsMissingParameter,
		},
		{
			name:  "mostly above one",
			cfg:   NewConfiguration(ValuesNotNull, map[string]any{"column": "id", "mostly": 1.5}),
			check: errors.IsValidationError,
		},
		{
			name:  "mostly not numeric",
			cfg:   NewConfiguration(ValuesNotNull, map[string]any{"column": "id", "mostly": "most"}),
			check: errors.IsValidationError,
		},
		{
			name:  "bad result format",
			cfg:   NewConfiguration(ValuesNotNull, map[string]any{"column": "id", "result_format": "VERBOSE"}),
			check: errors.IsValidationError,
		},
		{
			name:  "unknown type",
			cfg:   NewConfiguration("expect_the_unexpected", nil),
			check: func(err error) bool { return errors.Is(err, errors.ErrUnknownExpectation) },
		},
		{
			name:  "empty type",
			cfg:   Configuration{},
			check: errors.IsValidationError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Bind(tt.cfg)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestSubstitute(t *testing.T) {
	cfg := NewConfiguration(ValuesNotNull, map[string]any{
		"column": "id",
		"mostly": map[string]any{ParameterRef: "threshold"},
	})

	out, err := cfg.Substitute(map[string]any{"threshold": 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.5, out.Mostly())
	assert.Equal(t, map[string]any{ParameterRef: "threshold"}, cfg.Kwargs[KeyMostly])

	_, err = cfg.Substitute(nil)
	var missing *errors.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "threshold", missing.Parameter)
}

func TestMapSuccess(t *testing.T) {
	tests := []struct {
		elements, unexpected int
		mostly               float64
		want                 bool
	}{
		{0, 0, 1, true},
		{5, 0, 1, true},
		{5, 1, 1, false},
		{5, 1, 0.8, true},
		{10, 1, 0.9, true},
		{10, 2, 0.9, false},
		{5, 5, 0.9, false},
		{5, 5, 0, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapSuccess(tt.elements, tt.unexpected, tt.mostly),
			"n=%d u=%d mostly=%v", tt.elements, tt.unexpected, tt.mostly)
	}
}

func TestColumnMapInterpret(t *testing.T) {
	e, err := Lookup(ValuesInSet)
	require.NoError(t, err)

	kwargs := map[string]any{"column": "status", "value_set": []any{"ok"}, "mostly": 0.5}
	params := metrics.Params{"column": "status", "value_set": []any{"ok"}}
	values := metrics.Values{}
	values[metrics.RowCountRequest().ID()] = 4
	values[metrics.UnexpectedCountRequest(metrics.InSet, params).ID()] = 2
	values[metrics.UnexpectedRowsRequest(metrics.InSet, params).ID()] = metrics.UnexpectedRows{
		Indices: []int{1, 3},
		Values:  []any{"late", "lost"},
		Total:   2,
	}

	formats := []struct {
		format      Format
		deps        int
		wantIndices bool
		wantFull    bool
	}{
		{BooleanOnly, 2, false, false},
		{Basic, 3, false, false},
		{Summary, 3, true, false},
		{Complete, 3, true, true},
	}
	for _, tt := range formats {
		t.Run(string(tt.format), func(t *testing.T) {
			cfg, _, err := Bind(NewConfiguration(ValuesInSet, withFormat(kwargs, tt.format)))
			require.NoError(t, err)

			deps, err := e.Dependencies(cfg)
			require.NoError(t, err)
			assert.Len(t, deps, tt.deps)

			out, err := e.Interpret(cfg, values)
			require.NoError(t, err)
			assert.True(t, out.Success)

			if tt.format == BooleanOnly {
				assert.Equal(t, Detail{}, out.Result)
				return
			}
			assert.Equal(t, 4, *out.Result.ElementCount)
			assert.Equal(t, 2, *out.Result.UnexpectedCount)
			assert.Equal(t, 50.0, *out.Result.UnexpectedPercent)
			assert.Equal(t, []any{"late", "lost"}, out.Result.PartialUnexpectedList)
			assert.Equal(t, tt.wantIndices, out.Result.PartialUnexpectedIndexList != nil)
			assert.Equal(t, tt.wantFull, out.Result.UnexpectedList != nil)
		})
	}

	t.Run("MissingValue", func(t *testing.T) {
		cfg, _, err := Bind(NewConfiguration(ValuesInSet, kwargs))
		require.NoError(t, err)
		_, err = e.Interpret(cfg, metrics.Values{})
		assert.ErrorIs(t, err, errors.ErrInternal)
	})
}

func withFormat(kwargs map[string]any, f Format) map[string]any {
	out := map[string]any{KeyResultFormat: string(f)}
	for k, v := range kwargs {
		out[k] = v
	}
	return out
}

func TestRangeInterpret(t *testing.T) {
	e, err := Lookup(ColumnMaxBetween)
	require.NoError(t, err)
	req := metrics.ColumnRequest(metrics.ColumnMax, "x")

	tests := []struct {
		name     string
		kwargs   map[string]any
		observed any
		want     bool
	}{
		{"inside", map[string]any{"min_value": 1, "max_value": 10}, 10.0, true},
		{"strict max", map[string]any{"max_value": 10, "strict_max": true}, 10.0, false},
		{"below min", map[string]any{"min_value": 11}, 10.0, false},
		{"no values", map[string]any{"min_value": 0}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kwargs := map[string]any{"column": "x"}
			for k, v := range tt.kwargs {
				kwargs[k] = v
			}
			cfg, _, err := Bind(NewConfiguration(ColumnMaxBetween, kwargs))
			require.NoError(t, err)

			deps, err := e.Dependencies(cfg)
			require.NoError(t, err)
			assert.Equal(t, []metrics.Request{req}, deps)

			out, err := e.Interpret(cfg, metrics.Values{req.ID(): tt.observed})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Success)
			assert.Equal(t, tt.observed, out.Result.ObservedValue)
		})
	}

	t.Run("Unbounded", func(t *testing.T) {
		cfg, _, err := Bind(NewConfiguration(ColumnMaxBetween, map[string]any{"column": "x"}))
		require.NoError(t, err)
		_, err = e.Dependencies(cfg)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("Table", func(t *testing.T) {
		te, err := Lookup(TableRowCountBetween)
		require.NoError(t, err)
		assert.Empty(t, te.DomainKeys())

		cfg, _, err := Bind(NewConfiguration(TableRowCountBetween, map[string]any{"min_value": 1}))
		require.NoError(t, err)
		out, err := te.Interpret(cfg, metrics.Values{metrics.TableRowCount: 3})
		require.NoError(t, err)
		assert.True(t, out.Success)
	})
}

func TestRegistration(t *testing.T) {
	assert.Len(t, Types(), 9)
	for _, typ := range Types() {
		e, err := Lookup(typ)
		require.NoError(t, err)
		assert.NotEmpty(t, e.Examples(), typ)
	}

	e, _ := Lookup(ValuesNotNull)
	assert.Panics(t, func() { Register(e) })
}

func TestLoadSuite(t *testing.T) {
	doc := `
name: orders
meta:
  created_at: "2025-03-01T10:00:00.000Z"
expectations:
  - type: expect_column_values_to_not_be_null
    kwargs:
      column: id
  - type: expect_column_values_ip_address_in_network
    kwargs:
      column: client_ip
      ip_network: [10.0.0.0/8, 192.168.0.0/16]
      mostly: 0.9
`
	s, err := LoadSuite(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "orders", s.Name)
	assert.Equal(t, 1, s.Meta.Version)
	assert.Equal(t, 2025, time.Time(s.Meta.CreatedAt).Year())
	require.Len(t, s.Expectations, 2)
	assert.Equal(t, []any{"10.0.0.0/8", "192.168.0.0/16"}, s.Expectations[1].Kwargs["ip_network"])
	assert.Equal(t, 0.9, s.Expectations[1].Mostly())

	_, err = LoadSuite(strings.NewReader("name: x\nexpectations:\n  - type: expect_nothing\n"))
	assert.ErrorIs(t, err, errors.ErrUnknownExpectation)

	_, err = LoadSuite(strings.NewReader("expectations: []\n"))
	assert.True(t, errors.IsValidationError(err))
}
