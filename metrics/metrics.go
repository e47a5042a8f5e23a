/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

// Params holds the bound parameters of a metric request.
type Params map[string]any

// Strategy evaluates one metric against a batch of a single backend kind.
// deps holds the values of the metric's declared dependencies, keyed by
// request id. A condition strategy returns a []bool of batch length.
type Strategy func(ctx context.Context, batch execution.Batch, params Params, deps Values) (any, error)

// Definition describes a named, parameterized metric.
type Definition struct {
	// Name identifies the metric, e.g. "column.max".
	Name string
	// DomainKeys name the parameters selecting the data (e.g. "column").
	DomainKeys []string
	// ValueKeys name the parameters of the computation, in order.
	ValueKeys []string
	// Dependencies returns the metric requests this metric consumes.
	Dependencies func(params Params) []Request
}

// ParameterNames returns domain keys followed by value keys.
func (d Definition) ParameterNames() []string {
	return append(append([]string(nil), d.DomainKeys...), d.ValueKeys...)
}

// Request is a metric name bound to parameters. Two requests with the same
// name and parameters are the same computation.
type Request struct {
	Name   string `json:"metric_name"`
	Params Params `json:"metric_params,omitempty"`
}

// NewRequest builds a request, dropping nil parameters.
func NewRequest(name string, params Params) Request {
	clean := make(Params, len(params))
	for k, v := range params {
		if v != nil {
			clean[k] = v
		}
	}
	return Request{Name: name, Params: clean}
}

// ID returns the canonical identity of the request. encoding/json sorts map
// keys, so equal parameter sets yield equal ids.
func (r Request) ID() string {
	if len(r.Params) == 0 {
		return r.Name
	}
	raw, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Sprintf("%s%v", r.Name, r.Params)
	}
	return r.Name + string(raw)
}

func (r Request) String() string {
	return r.ID()
}

// Values holds computed metric values keyed by request id.
type Values map[string]any

// Get returns the value computed for req.
func (v Values) Get(req Request) (any, bool) {
	val, ok := v[req.ID()]
	return val, ok
}

// Must returns the value computed for req or an internal error naming it.
func (v Values) Must(req Request) (any, error) {
	val, ok := v.Get(req)
	if !ok {
		return nil, fmt.Errorf("%w: dependency %s has no value", errors.ErrInternal, req.ID())
	}
	return val, nil
}

// Subset copies the params named by keys.
func (p Params) Subset(keys ...string) Params {
	out := make(Params, len(keys))
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			out[k] = v
		}
	}
	return out
}

// String returns a required string parameter.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", errors.NewValidationError(key, "required")
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewValidationError(key, fmt.Sprintf("must be a string, got %T", v))
	}
	return s, nil
}

// OptionalFloat returns a numeric parameter, reporting whether it was set.
func (p Params) OptionalFloat(key string) (float64, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, ok := execution.Numeric(v)
	if !ok {
		return 0, false, errors.NewValidationError(key, fmt.Sprintf("must be numeric, got %T", v))
	}
	return f, true, nil
}

// Bool returns a boolean parameter, false when unset.
func (p Params) Bool(key string) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.NewValidationError(key, fmt.Sprintf("must be a boolean, got %T", v))
	}
	return b, nil
}

// List returns a required list parameter.
func (p Params) List(key string) ([]any, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, errors.NewValidationError(key, "required")
	}
	switch list := v.(type) {
	case []any:
		return list, nil
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, nil
	case []float64:
		out := make([]any, len(list))
		for i, f := range list {
			out[i] = f
		}
		return out, nil
	case []int:
		out := make([]any, len(list))
		for i, n := range list {
			out[i] = n
		}
		return out, nil
	default:
		return nil, errors.NewValidationError(key, fmt.Sprintf("must be a list, got %T", v))
	}
}
