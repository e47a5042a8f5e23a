/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package validator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/suparena/datacheck/execution"
	"github.com/suparena/datacheck/result"
)

const metricsNamespace = "datacheck"

// Metrics instruments validation runs. A nil *Metrics records nothing.
type Metrics struct {
	// ExpectationsTotal counts validated expectations.
	// Labels: outcome (success, failure, error)
	ExpectationsTotal *prometheus.CounterVec

	// MetricEvaluationsTotal counts metric evaluations.
	// Labels: backend (memory, sql, partitioned), status (success, error)
	MetricEvaluationsTotal *prometheus.CounterVec

	// RunDurationSeconds measures a validation run, batch resolution included.
	RunDurationSeconds prometheus.Histogram
}

// NewMetrics registers the validator metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ExpectationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "validator",
			Name:      "expectations_total",
			Help:      "Validated expectations by outcome",
		}, []string{"outcome"}),
		MetricEvaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "validator",
			Name:      "metric_evaluations_total",
			Help:      "Metric evaluations by backend and status",
		}, []string{"backend", "status"}),
		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "validator",
			Name:      "run_duration_seconds",
			Help:      "Validation run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeMetric(kind execution.BackendKind, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.MetricEvaluationsTotal.WithLabelValues(string(kind), status).Inc()
}

func (m *Metrics) observeResults(results []result.ExpectationValidationResult, started time.Time) {
	if m == nil {
		return
	}
	for _, r := range results {
		outcome := "failure"
		switch {
		case r.Raised():
			outcome = "error"
		case r.Success:
			outcome = "success"
		}
		m.ExpectationsTotal.WithLabelValues(outcome).Inc()
	}
	m.RunDurationSeconds.Observe(time.Since(started).Seconds())
}
