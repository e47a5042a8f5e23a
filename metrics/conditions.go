/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

// Map metric stems of the built-in column conditions.
const (
	IPAddressInNetwork = "column_values.ip_address_in_network"
	NonNull            = "column_values.nonnull"
	Between            = "column_values.between"
	InSet              = "column_values.in_set"
	MatchRegex         = "column_values.match_regex"
)

func builtinConditions() []ColumnCondition {
	return []ColumnCondition{
		{
			Name:      IPAddressInNetwork,
			ValueKeys: []string{"ip_network"},
			Predicate: ipInNetworkPredicate,
		},
		{
			Name: NonNull,
			Predicate: func(Params) (func(any) bool, error) {
				return func(v any) bool { return v != nil }, nil
			},
			SQL: func(column string, _ Params) (string, []any, error) {
				return column + " IS NOT NULL", nil, nil
			},
		},
		{
			Name:      Between,
			ValueKeys: []string{"min_value", "max_value", "strict_min", "strict_max"},
			Predicate: betweenPredicate,
			SQL:       betweenSQL,
		},
		{
			Name:      InSet,
			ValueKeys: []string{"value_set"},
			Predicate: inSetPredicate,
			SQL:       inSetSQL,
		},
		{
			Name:      MatchRegex,
			ValueKeys: []string{"regex"},
			Predicate: matchRegexPredicate,
		},
	}
}

// ParseNetworks parses the ordered CIDR ranges of an ip_network parameter.
// Ranges with host bits set are rejected.
func ParseNetworks(ranges []any) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(ranges))
	for _, r := range ranges {
		s, ok := r.(string)
		if !ok {
			return nil, errors.NewValidationError("ip_network", fmt.Sprintf("range must be a string, got %T", r))
		}
		p, err := netip.ParsePrefix(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.NewValidationError("ip_network", err.Error())
		}
		if p != p.Masked() {
			return nil, errors.NewValidationError("ip_network", fmt.Sprintf("%s has host bits set", s))
		}
		out = append(out, p)
	}
	return out, nil
}

// InNetworks reports whether v is an IP address inside any of networks.
// Values that are not addresses never match.
func InNetworks(v any, networks []netip.Prefix) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, n := range networks {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}

func ipInNetworkPredicate(params Params) (func(any) bool, error) {
	ranges, err := params.List("ip_network")
	if err != nil {
		return nil, err
	}
	networks, err := ParseNetworks(ranges)
	if err != nil {
		return nil, err
	}
	return func(v any) bool { return InNetworks(v, networks) }, nil
}

type bounds struct {
	min, max             float64
	hasMin, hasMax       bool
	strictMin, strictMax bool
}

func parseBounds(params Params) (bounds, error) {
	var (
		b   bounds
		err error
	)
	if b.min, b.hasMin, err = params.OptionalFloat("min_value"); err != nil {
		return b, err
	}
	if b.max, b.hasMax, err = params.OptionalFloat("max_value"); err != nil {
		return b, err
	}
	if !b.hasMin && !b.hasMax {
		return b, errors.NewValidationError("", "min_value and max_value cannot both be unset")
	}
	if b.hasMin && b.hasMax && b.min > b.max {
		return b, errors.NewValidationError("min_value", "must not exceed max_value")
	}
	if b.strictMin, err = params.Bool("strict_min"); err != nil {
		return b, err
	}
	if b.strictMax, err = params.Bool("strict_max"); err != nil {
		return b, err
	}
	return b, nil
}

// contains reports whether f lies within the bounds.
func (b bounds) contains(f float64) bool {
	if b.hasMin && (f < b.min || (b.strictMin && f == b.min)) {
		return false
	}
	if b.hasMax && (f > b.max || (b.strictMax && f == b.max)) {
		return false
	}
	return true
}

func betweenPredicate(params Params) (func(any) bool, error) {
	b, err := parseBounds(params)
	if err != nil {
		return nil, err
	}
	return func(v any) bool {
		f, ok := execution.Numeric(v)
		return ok && b.contains(f)
	}, nil
}

func betweenSQL(column string, params Params) (string, []any, error) {
	b, err := parseBounds(params)
	if err != nil {
		return "", nil, err
	}
	var (
		clauses []string
		args    []any
	)
	if b.hasMin {
		op := ">="
		if b.strictMin {
			op = ">"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", column, op))
		args = append(args, b.min)
	}
	if b.hasMax {
		op := "<="
		if b.strictMax {
			op = "<"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", column, op))
		args = append(args, b.max)
	}
	return strings.Join(clauses, " AND "), args, nil
}

// setKey normalizes values so that 1, 1.0 and "1" compare equal. Integers
// keep their exact value.
func setKey(v any) string {
	if v == nil {
		return "\x00nil"
	}
	if i, ok := execution.Integer(v); ok {
		return strconv.FormatInt(i, 10)
	}
	if f, ok := execution.Numeric(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func inSetPredicate(params Params) (func(any) bool, error) {
	values, err := params.List("value_set")
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[setKey(v)] = true
	}
	return func(v any) bool {
		return v != nil && set[setKey(v)]
	}, nil
}

func inSetSQL(column string, params Params) (string, []any, error) {
	values, err := params.List("value_set")
	if err != nil {
		return "", nil, err
	}
	if len(values) == 0 {
		return "1 = 0", nil, nil
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = execution.SQLArg(v)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return fmt.Sprintf("%s IN (%s)", column, marks), args, nil
}

func matchRegexPredicate(params Params) (func(any) bool, error) {
	pattern, err := params.String("regex")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.NewValidationError("regex", err.Error())
	}
	return func(v any) bool {
		s, ok := v.(string)
		return ok && re.MatchString(s)
	}, nil
}
