/*
Package execution defines the batch types metrics are evaluated against.

Three backend kinds are supported:
  - memory: Frame, an in-memory columnar table
  - sql: SQLBatch, a table behind a database/sql handle
  - partitioned: PartitionedFrame, a Frame split into partitions evaluated
    concurrently and combined

Every batch implements Batch so the validator can treat them uniformly; a
metric strategy registered for a backend kind receives that kind's concrete
batch type.

	frame, _ := execution.NewFrame("orders", []string{"ip"}, rows)
	parted := execution.NewPartitionedFrame(frame, 4, 2)
	counts, err := execution.MapPartitions(ctx, parted, func(ctx context.Context, f *execution.Frame) (int, error) {
	    return f.RowCount(), nil
	})
*/
package execution
