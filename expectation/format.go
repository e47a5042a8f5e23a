/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expectation

import (
	"fmt"
	"strings"

	"github.com/suparena/datacheck/errors"
)

// Format controls how much detail a validation result carries.
type Format string

const (
	// BooleanOnly reports success alone.
	BooleanOnly Format = "BOOLEAN_ONLY"
	// Basic adds counts and a partial sample of unexpected values.
	Basic Format = "BASIC"
	// Summary adds the row indices of the partial sample.
	Summary Format = "SUMMARY"
	// Complete lists every unexpected value, up to
	// metrics.MaxUnexpectedRowsKept of them.
	Complete Format = "COMPLETE"

	// DefaultFormat applies when neither the configuration nor the
	// validator sets one.
	DefaultFormat = Summary

	partialUnexpectedCount = 20
)

// ParseFormat parses a result format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToUpper(strings.TrimSpace(s))); f {
	case BooleanOnly, Basic, Summary, Complete:
		return f, nil
	case "":
		return DefaultFormat, nil
	default:
		return "", errors.NewValidationError(KeyResultFormat, fmt.Sprintf("unknown result format %q", s))
	}
}

// FormatOf returns the result format bound in cfg. Both a bare name and
// {"result_format": name} are accepted.
func FormatOf(cfg Configuration) Format {
	var raw string
	switch v := cfg.Kwargs[KeyResultFormat].(type) {
	case string:
		raw = v
	case Format:
		raw = string(v)
	case map[string]any:
		raw, _ = v[KeyResultFormat].(string)
	}
	f, err := ParseFormat(raw)
	if err != nil {
		return DefaultFormat
	}
	return f
}

// Detail is the diagnostic part of a validation result. Which fields are
// set depends on the expectation kind and the result format.
type Detail struct {
	ObservedValue              any      `json:"observed_value,omitempty"`
	ElementCount               *int     `json:"element_count,omitempty"`
	UnexpectedCount            *int     `json:"unexpected_count,omitempty"`
	UnexpectedPercent          *float64 `json:"unexpected_percent,omitempty"`
	PartialUnexpectedList      []any    `json:"partial_unexpected_list,omitempty"`
	PartialUnexpectedIndexList []int    `json:"partial_unexpected_index_list,omitempty"`
	UnexpectedList             []any    `json:"unexpected_list,omitempty"`
	UnexpectedIndexList        []int    `json:"unexpected_index_list,omitempty"`
	// UnexpectedListTruncated reports that the unexpected lists stop at
	// metrics.MaxUnexpectedRowsKept rows; UnexpectedCount counts them all.
	UnexpectedListTruncated bool `json:"unexpected_list_truncated,omitempty"`
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }
