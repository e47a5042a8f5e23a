/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package validator

import (
	"log/slog"

	"github.com/suparena/datacheck/batch"
	"github.com/suparena/datacheck/expectation"
	"github.com/suparena/datacheck/metrics"
)

// Option configures a Validator.
type Option func(*Validator)

// WithResultFormat sets the result format of configurations that do not set
// their own.
func WithResultFormat(f expectation.Format) Option {
	return func(v *Validator) {
		v.format = f
	}
}

// WithBatchRequestOptions sets the options passed when the batch is built.
func WithBatchRequestOptions(options batch.RequestOptions) Option {
	return func(v *Validator) {
		v.options = options
	}
}

// WithMaxConcurrency bounds how many independent metrics are evaluated at
// once. Values below 1 are ignored.
func WithMaxConcurrency(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxConcurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithMetricRegistry evaluates metrics from reg instead of metrics.Default().
func WithMetricRegistry(reg *metrics.Registry) Option {
	return func(v *Validator) {
		if reg != nil {
			v.registry = reg
		}
	}
}

// WithResolver replaces the batch resolver.
func WithResolver(r BatchResolver) Option {
	return func(v *Validator) {
		if r != nil {
			v.resolver = r
		}
	}
}

// WithPrometheus records run metrics into m.
func WithPrometheus(m *Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}
