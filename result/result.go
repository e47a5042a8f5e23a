/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package result

import (
	"encoding/json"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/datacheck/expectation"
)

// ExceptionInfo captures an error raised while validating one expectation.
type ExceptionInfo struct {
	RaisedException  bool   `json:"raised_exception"`
	ExceptionMessage string `json:"exception_message,omitempty"`
}

// ExpectationValidationResult is the outcome of validating one configuration.
type ExpectationValidationResult struct {
	ExpectationConfig expectation.Configuration `json:"expectation_config"`
	Success           bool                      `json:"success"`
	Result            expectation.Detail        `json:"result"`
	ExceptionInfo     *ExceptionInfo            `json:"exception_info,omitempty"`

	// Err is the captured error, if any. It is not serialized.
	Err error `json:"-"`
}

// FromOutcome builds a result from an interpreted outcome.
func FromOutcome(cfg expectation.Configuration, out expectation.Outcome) ExpectationValidationResult {
	return ExpectationValidationResult{
		ExpectationConfig: cfg,
		Success:           out.Success,
		Result:            out.Result,
	}
}

// FromError builds a failed result carrying err.
func FromError(cfg expectation.Configuration, err error) ExpectationValidationResult {
	return ExpectationValidationResult{
		ExpectationConfig: cfg,
		ExceptionInfo: &ExceptionInfo{
			RaisedException:  true,
			ExceptionMessage: err.Error(),
		},
		Err: err,
	}
}

// Raised reports whether validation raised an error rather than ran to a verdict.
func (r ExpectationValidationResult) Raised() bool {
	return r.ExceptionInfo != nil && r.ExceptionInfo.RaisedException
}

// Meta describes the run that produced a suite result.
type Meta struct {
	SuiteName     string          `json:"expectation_suite_name,omitempty"`
	ActiveBatchID string          `json:"active_batch_id,omitempty"`
	RunID         string          `json:"run_id,omitempty"`
	RunTime       strfmt.DateTime `json:"run_time"`
}

// SuiteValidationResult is the outcome of validating a suite against one batch.
type SuiteValidationResult struct {
	Results    []ExpectationValidationResult `json:"results"`
	Success    bool                          `json:"success"`
	Statistics Statistics                    `json:"statistics"`
	Meta       Meta                          `json:"meta"`
}

// NewSuiteResult aggregates results, which keep their order.
func NewSuiteResult(results []ExpectationValidationResult, meta Meta) SuiteValidationResult {
	if results == nil {
		results = []ExpectationValidationResult{}
	}
	stats := ComputeStatistics(results)
	return SuiteValidationResult{
		Results:    results,
		Success:    stats.SuccessfulExpectations == stats.EvaluatedExpectations,
		Statistics: stats,
		Meta:       meta,
	}
}

// Failed returns the unsuccessful results.
func (s SuiteValidationResult) Failed() []ExpectationValidationResult {
	var out []ExpectationValidationResult
	for _, r := range s.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// JSON renders the result as indented JSON.
func (s SuiteValidationResult) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
