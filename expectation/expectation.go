/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expectation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
	"github.com/suparena/datacheck/metrics"
	"github.com/suparena/datacheck/registry"
)

// Expectation is a declarative assertion type. Implementations are
// stateless; all per-use state lives in the Configuration.
type Expectation interface {
	// Type is the name configurations refer to.
	Type() string
	// DomainKeys name the kwargs selecting the data, e.g. "column".
	DomainKeys() []string
	// SuccessKeys name the kwargs that influence success. Each must be
	// bound, explicitly or through DefaultKwargs, before validation.
	SuccessKeys() []string
	// DefaultKwargs returns defaults for unbound optional kwargs.
	DefaultKwargs() map[string]any
	// Dependencies lists the metric requests needed to interpret cfg.
	Dependencies(cfg Configuration) ([]metrics.Request, error)
	// Interpret turns the computed metric values into an outcome.
	Interpret(cfg Configuration, values metrics.Values) (Outcome, error)
	// Examples returns regression fixtures. They are never consulted
	// during validation.
	Examples() []Example
}

// Outcome is the interpretation of metric values for one configuration.
type Outcome struct {
	Success bool
	Result  Detail
}

// Example is a fixture dataset with the tests run against it.
type Example struct {
	// Data is column-major; Columns fixes the column order.
	Columns []string
	Data    map[string][]any
	Tests   []ExampleTest
}

// ExampleTest is one parameter set with its expected outcome.
type ExampleTest struct {
	Title  string
	Kwargs map[string]any
	// Success is the expected outcome.
	Success bool
	// UnexpectedCount, when set, is checked against the result.
	UnexpectedCount *int
	// Backends restricts the test to some backend kinds; empty means all
	// kinds the expectation's metrics support.
	Backends []execution.BackendKind
}

var (
	types    = registry.New[Expectation]("expectation")
	validate = validator.New()
)

// Register adds e to the expectation type registry. Registering a type name
// twice panics.
func Register(e Expectation) {
	types.MustRegister(e.Type(), e)
}

// Lookup returns the expectation registered under typ.
func Lookup(typ string) (Expectation, error) {
	e, err := types.Get(typ)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownExpectation, typ)
	}
	return e, nil
}

// Types lists the registered expectation types, sorted.
func Types() []string {
	return types.Names()
}

type commonKwargs struct {
	Mostly float64 `validate:"gte=0,lte=1"`
}

// Bind resolves the type of cfg, applies its defaults and checks that every
// domain and success key is bound. Unresolved $PARAMETER references must
// have been substituted before.
func Bind(cfg Configuration) (Configuration, Expectation, error) {
	if err := validate.Struct(cfg); err != nil {
		return cfg, nil, errors.NewValidationError("type", "expectation type is required")
	}
	e, err := Lookup(cfg.Type)
	if err != nil {
		return cfg, nil, err
	}
	bound := cfg.WithDefaults(e.DefaultKwargs())

	keys := append(append([]string(nil), e.DomainKeys()...), e.SuccessKeys()...)
	for _, key := range keys {
		v, ok := bound.Kwargs[key]
		if !ok {
			return cfg, nil, errors.NewMissingParameterError(cfg.Type, key)
		}
		if _, unresolved := parameterRef(v); unresolved {
			return cfg, nil, errors.NewMissingParameterError(cfg.Type, key)
		}
	}

	if raw, ok := bound.Kwargs[KeyMostly]; ok && raw != nil {
		mostly, numeric := execution.Numeric(raw)
		if !numeric {
			return cfg, nil, errors.NewValidationError(KeyMostly, fmt.Sprintf("must be numeric, got %T", raw))
		}
		if err := validate.Struct(commonKwargs{Mostly: mostly}); err != nil {
			return cfg, nil, errors.NewValidationError(KeyMostly, fmt.Sprintf("%v is outside [0, 1]", mostly))
		}
	}
	if s, ok := bound.Kwargs[KeyResultFormat].(string); ok {
		if _, err := ParseFormat(s); err != nil {
			return cfg, nil, err
		}
	}
	return bound, e, nil
}

// base carries the registration data shared by the expectation kinds.
type base struct {
	name     string
	domain   []string
	success  []string
	defaults map[string]any
	examples []Example
}

func (b base) Type() string          { return b.name }
func (b base) DomainKeys() []string  { return b.domain }
func (b base) SuccessKeys() []string { return b.success }
func (b base) Examples() []Example   { return b.examples }

func (b base) DefaultKwargs() map[string]any {
	out := map[string]any{KeyResultFormat: string(DefaultFormat)}
	for k, v := range b.defaults {
		out[k] = v
	}
	return out
}
