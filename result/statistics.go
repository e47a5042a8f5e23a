/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package result

// Statistics summarizes a suite run. SuccessPercent is nil when nothing was
// evaluated.
type Statistics struct {
	EvaluatedExpectations    int      `json:"evaluated_expectations"`
	SuccessfulExpectations   int      `json:"successful_expectations"`
	UnsuccessfulExpectations int      `json:"unsuccessful_expectations"`
	SuccessPercent           *float64 `json:"success_percent"`
}

// ComputeStatistics counts results. The outcome does not depend on order.
func ComputeStatistics(results []ExpectationValidationResult) Statistics {
	var s Statistics
	for _, r := range results {
		s.EvaluatedExpectations++
		if r.Success {
			s.SuccessfulExpectations++
		}
	}
	s.UnsuccessfulExpectations = s.EvaluatedExpectations - s.SuccessfulExpectations
	if s.EvaluatedExpectations > 0 {
		pct := 100 * float64(s.SuccessfulExpectations) / float64(s.EvaluatedExpectations)
		s.SuccessPercent = &pct
	}
	return s
}
