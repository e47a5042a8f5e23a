// Package validator runs expectation configurations against the batch of a
// batch config.
//
// A Validator resolves its batch lazily on first use and reuses it. For each
// run it compiles the metric requests of every configuration into one
// deduplicated graph, evaluates the graph level by level with the strategies
// of the batch's backend kind, then interprets each configuration against the
// computed values. Errors confined to one configuration (unknown type,
// missing parameter, metric unavailable on the backend, failed evaluation)
// are captured in that configuration's result; only batch resolution
// failures abort the run.
//
// Example:
//
//	v := validator.New(batchConfig,
//		validator.WithResultFormat(expectation.Summary),
//		validator.WithMaxConcurrency(4),
//	)
//	res, err := v.ValidateSuite(ctx, suite, nil)
package validator
