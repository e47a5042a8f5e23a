/*
Package expectation defines expectation types, their configurations and
suites.

An expectation type wraps one metric: it declares the kwargs it
recognizes, their defaults, the metric requests needed to evaluate a
configuration, and how the computed values translate into success.

Three kinds are provided:

  - ColumnMapExpectation: a row condition must hold for at least a
    "mostly" fraction of the rows. An empty batch passes.
  - ColumnAggregateExpectation: a column aggregate must fall within
    [min_value, max_value].
  - TableExpectation: a table metric must fall within [min_value, max_value].

Configurations are bound before use:

	cfg := expectation.NewConfiguration(expectation.ValuesNotNull, map[string]any{
	    "column": "id",
	    "mostly": 0.95,
	})
	bound, exp, err := expectation.Bind(cfg)

Bind applies defaults and rejects configurations with unbound domain or
success keys. Each type also carries Examples, fixture data used by the
test suite only.
*/
package expectation
