/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package execution

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// BackendKind names an execution engine family. Metric strategies are
// registered per kind.
type BackendKind string

const (
	// BackendMemory evaluates metrics over an in-memory columnar Frame.
	BackendMemory BackendKind = "memory"
	// BackendSQL evaluates metrics by issuing queries through database/sql.
	BackendSQL BackendKind = "sql"
	// BackendPartitioned evaluates metrics per partition of a distributed frame.
	BackendPartitioned BackendKind = "partitioned"
)

// Kinds lists every known backend kind.
func Kinds() []BackendKind {
	return []BackendKind{BackendMemory, BackendSQL, BackendPartitioned}
}

// Batch is a resolved, concrete slice of data ready for validation.
// Strategies type-assert to the concrete batch of their backend.
type Batch interface {
	// ID identifies the batch, derived from the request that produced it.
	ID() string
	// Kind reports the backend the batch lives in.
	Kind() BackendKind
}

// Numeric converts supported numeric values (and numeric strings) to float64.
func Numeric(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Float64 {
			return rv.Convert(reflect.TypeOf(float64(0))).Float(), true
		}
		return 0, false
	}
}

// Integer converts integral values to int64 without going through float64,
// so integers beyond 2^53 keep their exact value. Integral floats within the
// exactly representable range are accepted too.
func Integer(v any) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return i, true
		}
	case []byte:
		if i, err := strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64); err == nil {
			return i, true
		}
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Int64:
			return rv.Int(), true
		case rv.Kind() >= reflect.Uint && rv.Kind() <= reflect.Uint64:
			if u := rv.Uint(); u <= math.MaxInt64 {
				return int64(u), true
			}
			return 0, false
		}
	}
	f, ok := Numeric(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// SQLArg converts decoded JSON numbers into values database drivers bind
// as numbers. Other values pass through.
func SQLArg(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return string(n)
}

// ParseValue converts a raw text cell into an int, a float or a string.
// Empty cells become nil.
func ParseValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
