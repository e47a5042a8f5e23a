/*
Package metrics provides the metric definitions and the capability table
that dispatches a metric to the evaluation strategy of a backend kind.

A metric is a named, parameterized computation over a batch. Row predicates
("conditions") return one boolean per row; aggregates return a scalar.
Strategies are registered per (metric, backend kind):

	reg := metrics.NewRegistry()
	_ = metrics.RegisterBuiltins(reg)

	s, err := reg.Resolve("column.max", execution.BackendSQL)
	if errors.IsBackendUnavailable(err) {
	    // no SQL implementation for this metric
	}

Column conditions registered through RegisterColumnCondition automatically
get two derived metrics usable on every backend:

	<stem>.condition         []bool, one per row
	<stem>.unexpected_count  int, number of false rows
	<stem>.unexpected_rows   UnexpectedRows, failing rows with their values

Metrics declare their own dependencies (column.mean depends on column.sum and
column.nonnull_count), so a caller can compile the transitive closure of a
set of requests and evaluate shared sub-computations once.
*/
package metrics
