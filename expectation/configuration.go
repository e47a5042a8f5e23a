/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expectation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

// Well-known configuration keys.
const (
	KeyColumn       = "column"
	KeyMostly       = "mostly"
	KeyResultFormat = "result_format"
	KeyMinValue     = "min_value"
	KeyMaxValue     = "max_value"
	KeyStrictMin    = "strict_min"
	KeyStrictMax    = "strict_max"

	// ParameterRef marks a kwarg whose value is taken from the evaluation
	// parameters at validation time: {"$PARAMETER": "threshold"}.
	ParameterRef = "$PARAMETER"
)

// Configuration binds an expectation type to its parameters.
type Configuration struct {
	Type   string         `json:"type" yaml:"type" validate:"required"`
	Kwargs map[string]any `json:"kwargs" yaml:"kwargs"`
	Meta   map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// UnmarshalJSON keeps numeric kwargs as json.Number so that integers of
// any size survive a store round trip.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	type plain Configuration
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*c = Configuration(p)
	return nil
}

// NewConfiguration creates a configuration for typ.
func NewConfiguration(typ string, kwargs map[string]any) Configuration {
	return Configuration{Type: typ, Kwargs: kwargs}
}

// Clone returns a deep copy of the top-level maps.
func (c Configuration) Clone() Configuration {
	out := Configuration{Type: c.Type, Kwargs: make(map[string]any, len(c.Kwargs))}
	for k, v := range c.Kwargs {
		out.Kwargs[k] = v
	}
	if c.Meta != nil {
		out.Meta = make(map[string]any, len(c.Meta))
		for k, v := range c.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

// Column returns the target column, or "" for table-level expectations.
func (c Configuration) Column() string {
	s, _ := c.Kwargs[KeyColumn].(string)
	return s
}

// Mostly returns the success threshold, 1 when unset.
func (c Configuration) Mostly() float64 {
	f, ok := execution.Numeric(c.Kwargs[KeyMostly])
	if !ok {
		return 1
	}
	return f
}

// String describes the configuration for logs.
func (c Configuration) String() string {
	keys := make([]string, 0, len(c.Kwargs))
	for k := range c.Kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := c.Type + "("
	for i, k := range keys {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%v", k, c.Kwargs[k])
	}
	return s + ")"
}

// WithDefaults returns a copy in which every key of defaults missing from
// the kwargs is bound to its default.
func (c Configuration) WithDefaults(defaults map[string]any) Configuration {
	out := c.Clone()
	for k, v := range defaults {
		if _, ok := out.Kwargs[k]; !ok {
			out.Kwargs[k] = v
		}
	}
	return out
}

// Substitute replaces {"$PARAMETER": name} kwargs with params[name]. A
// reference to an absent parameter is a MissingParameterError.
func (c Configuration) Substitute(params map[string]any) (Configuration, error) {
	out := c.Clone()
	for k, v := range out.Kwargs {
		ref, ok := parameterRef(v)
		if !ok {
			continue
		}
		val, found := params[ref]
		if !found {
			return c, errors.NewMissingParameterError(c.Type, ref)
		}
		out.Kwargs[k] = val
	}
	return out, nil
}

func parameterRef(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	name, ok := m[ParameterRef].(string)
	return name, ok
}
