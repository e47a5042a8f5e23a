/*
Package errors provides semantic error types for datacheck.

The package defines the error taxonomy shared by the metric registry, the
validator and the stores. Each typed error matches its sentinel through
errors.Is, so callers can branch on the category without caring about the
concrete type.

Common Errors:

	var (
	    ErrBackendUnavailable = errors.New("backend unavailable")
	    ErrBatchResolution    = errors.New("batch resolution failed")
	    ErrMetricEvaluation   = errors.New("metric evaluation failed")
	    ErrStoreParse         = errors.New("store payload parse failed")
	    ErrIdentityConflict   = errors.New("identity conflict")
	)

Propagation:

Computation-local errors (BackendUnavailable, MetricEvaluation,
MissingParameter) are captured into the affected expectation's result so that
partial suite results stay usable. Structural errors (BatchResolution,
StoreParse, IdentityConflict) are returned to the caller.

Usage:

	res, err := v.ValidateSuite(ctx, suite, nil)
	if err != nil {
	    if errors.IsBatchResolution(err) {
	        // no partial results exist
	    }
	    return err
	}
*/
package errors
