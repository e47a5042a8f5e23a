/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("ExpectationSuite", "orders")

	expected := `ExpectationSuite with key "orders" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("ValidationConfig", "nightly")

	expected := `ValidationConfig with key "nightly" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "mostly",
			message:  "must be within [0, 1]",
			expected: `validation failed for field "mostly": must be within [0, 1]`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing expectation type",
			expected: "validation failed: missing expectation type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestTaxonomy(t *testing.T) {
	cause := fmt.Errorf("connection reset")

	tests := []struct {
		name     string
		err      error
		sentinel error
		check    func(error) bool
		message  string
	}{
		{
			name:     "backend unavailable",
			err:      NewBackendUnavailableError("column_values.ip_address_in_network.condition", "sql"),
			sentinel: ErrBackendUnavailable,
			check:    IsBackendUnavailable,
			message:  `metric "column_values.ip_address_in_network.condition" is not implemented for backend "sql"`,
		},
		{
			name:     "batch resolution",
			err:      NewBatchResolutionError("daily", cause),
			sentinel: ErrBatchResolution,
			check:    IsBatchResolution,
			message:  `cannot resolve batch for batch config "daily": connection reset`,
		},
		{
			name:     "metric evaluation",
			err:      NewMetricEvaluationError("column.max", cause),
			sentinel: ErrMetricEvaluation,
			check:    IsMetricEvaluation,
			message:  "evaluating metric column.max: connection reset",
		},
		{
			name:     "store parse",
			err:      NewStoreParseError("empty payload", `{"data":[]}`),
			sentinel: ErrStoreParse,
			check:    IsStoreParse,
			message:  `cannot parse store payload (empty payload): {"data":[]}`,
		},
		{
			name:     "identity conflict",
			err:      NewIdentityConflictError("nightly", "a", "b"),
			sentinel: ErrIdentityConflict,
			check:    IsIdentityConflict,
			message:  `key "nightly" is persisted with id "a", refusing to store id "b"`,
		},
		{
			name:     "missing parameter",
			err:      NewMissingParameterError("expect_column_values_to_be_in_set", "value_set"),
			sentinel: ErrMissingParameter,
			check:    IsMissingParameter,
			message:  `expect_column_values_to_be_in_set: parameter "value_set" is not bound and has no default`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.message {
				t.Errorf("Expected error message %q, got %q", tt.message, tt.err.Error())
			}
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%T should match its sentinel", tt.err)
			}
			if !tt.check(fmt.Errorf("wrapped: %w", tt.err)) {
				t.Errorf("helper should see through wrapping for %T", tt.err)
			}
		})
	}
}

func TestCauseUnwrap(t *testing.T) {
	cause := NewNotFoundError("DataAsset", "orders")

	err := NewBatchResolutionError("daily", cause)
	if !IsNotFound(err) {
		t.Error("BatchResolutionError should unwrap to its cause")
	}

	err = NewMetricEvaluationError("column.sum", cause)
	if !IsNotFound(err) {
		t.Error("MetricEvaluationError should unwrap to its cause")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrMissingParameter,
		ErrUnknownMetric,
		ErrUnknownExpectation,
		ErrBackendUnavailable,
		ErrBatchResolution,
		ErrMetricEvaluation,
		ErrStoreParse,
		ErrIdentityConflict,
		ErrInternal,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
