/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a stored object is not found
	ErrNotFound = errors.New("object not found")

	// ErrAlreadyExists is returned when attempting to create an object that already exists
	ErrAlreadyExists = errors.New("object already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingParameter is returned when a success-relevant parameter is unbound
	ErrMissingParameter = errors.New("missing parameter")

	// ErrUnknownMetric is returned when a metric name has never been registered
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrUnknownExpectation is returned when an expectation type has never been registered
	ErrUnknownExpectation = errors.New("unknown expectation type")

	// ErrBackendUnavailable is returned when a metric has no strategy for a backend kind
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBatchResolution is returned when a batch cannot be built from its configuration
	ErrBatchResolution = errors.New("batch resolution failed")

	// ErrMetricEvaluation is returned when a backend strategy fails during computation
	ErrMetricEvaluation = errors.New("metric evaluation failed")

	// ErrStoreParse is returned when a persistence backend returns a malformed payload
	ErrStoreParse = errors.New("store payload parse failed")

	// ErrIdentityConflict is returned when a persisted identifier would change
	ErrIdentityConflict = errors.New("identity conflict")

	// ErrInternal signals a broken internal invariant
	ErrInternal = errors.New("internal consistency fault")
)

// NotFoundError represents an error when an object is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an object already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MissingParameterError reports an unbound parameter of an expectation configuration
type MissingParameterError struct {
	Expectation string
	Parameter   string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: parameter %q is not bound and has no default", e.Expectation, e.Parameter)
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// BackendUnavailableError reports a (metric, backend) pair without a registered strategy
type BackendUnavailableError struct {
	Metric  string
	Backend string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("metric %q is not implemented for backend %q", e.Metric, e.Backend)
}

func (e *BackendUnavailableError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

// BatchResolutionError wraps the cause of a failed batch resolution
type BatchResolutionError struct {
	BatchConfig string
	Cause       error
}

func (e *BatchResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve batch for batch config %q: %v", e.BatchConfig, e.Cause)
}

func (e *BatchResolutionError) Is(target error) bool {
	return target == ErrBatchResolution
}

func (e *BatchResolutionError) Unwrap() error {
	return e.Cause
}

// MetricEvaluationError wraps the failure of a backend strategy
type MetricEvaluationError struct {
	Metric string
	Cause  error
}

func (e *MetricEvaluationError) Error() string {
	return fmt.Sprintf("evaluating metric %s: %v", e.Metric, e.Cause)
}

func (e *MetricEvaluationError) Is(target error) bool {
	return target == ErrMetricEvaluation
}

func (e *MetricEvaluationError) Unwrap() error {
	return e.Cause
}

// StoreParseError represents a malformed or ambiguous store payload
type StoreParseError struct {
	Reason  string
	Payload string
}

func (e *StoreParseError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("cannot parse store payload (%s): %s", e.Reason, e.Payload)
	}
	return fmt.Sprintf("cannot parse store payload (%s)", e.Reason)
}

func (e *StoreParseError) Is(target error) bool {
	return target == ErrStoreParse
}

// IdentityConflictError is returned when a value's identifier differs from the persisted one
type IdentityConflictError struct {
	Key      string
	Existing string
	Incoming string
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("key %q is persisted with id %q, refusing to store id %q", e.Key, e.Existing, e.Incoming)
}

func (e *IdentityConflictError) Is(target error) bool {
	return target == ErrIdentityConflict
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(objectType, key string) error {
	return &NotFoundError{Type: objectType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(objectType, key string) error {
	return &AlreadyExistsError{Type: objectType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewMissingParameterError creates a new MissingParameterError
func NewMissingParameterError(expectation, parameter string) error {
	return &MissingParameterError{Expectation: expectation, Parameter: parameter}
}

// NewBackendUnavailableError creates a new BackendUnavailableError
func NewBackendUnavailableError(metric, backend string) error {
	return &BackendUnavailableError{Metric: metric, Backend: backend}
}

// NewBatchResolutionError creates a new BatchResolutionError
func NewBatchResolutionError(batchConfig string, cause error) error {
	return &BatchResolutionError{BatchConfig: batchConfig, Cause: cause}
}

// NewMetricEvaluationError creates a new MetricEvaluationError
func NewMetricEvaluationError(metric string, cause error) error {
	return &MetricEvaluationError{Metric: metric, Cause: cause}
}

// NewStoreParseError creates a new StoreParseError
func NewStoreParseError(reason, payload string) error {
	return &StoreParseError{Reason: reason, Payload: payload}
}

// NewIdentityConflictError creates a new IdentityConflictError
func NewIdentityConflictError(key, existing, incoming string) error {
	return &IdentityConflictError{Key: key, Existing: existing, Incoming: incoming}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsBackendUnavailable checks if an error is a backend unavailable error
func IsBackendUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// IsBatchResolution checks if an error is a batch resolution error
func IsBatchResolution(err error) bool {
	return errors.Is(err, ErrBatchResolution)
}

// IsMetricEvaluation checks if an error is a metric evaluation error
func IsMetricEvaluation(err error) bool {
	return errors.Is(err, ErrMetricEvaluation)
}

// IsStoreParse checks if an error is a store parse error
func IsStoreParse(err error) bool {
	return errors.Is(err, ErrStoreParse)
}

// IsIdentityConflict checks if an error is an identity conflict
func IsIdentityConflict(err error) bool {
	return errors.Is(err, ErrIdentityConflict)
}

// IsMissingParameter checks if an error is a missing parameter error
func IsMissingParameter(err error) bool {
	return errors.Is(err, ErrMissingParameter)
}

// Is and As forward to the standard library so callers importing this
// package as "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
