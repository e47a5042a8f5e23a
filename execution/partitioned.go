/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package execution

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PartitionedFrame is a dataframe split into partitions that are evaluated
// independently and combined afterwards.
type PartitionedFrame struct {
	id          string
	partitions  []*Frame
	parallelism int
}

// NewPartitionedFrame splits f into n partitions. parallelism bounds how
// many partitions are evaluated at once; values below 1 mean one per partition.
func NewPartitionedFrame(f *Frame, n, parallelism int) *PartitionedFrame {
	return &PartitionedFrame{id: f.ID(), partitions: f.Split(n), parallelism: parallelism}
}

func (p *PartitionedFrame) ID() string        { return p.id }
func (p *PartitionedFrame) Kind() BackendKind { return BackendPartitioned }

// Partitions returns the partitions in row order.
func (p *PartitionedFrame) Partitions() []*Frame {
	return p.partitions
}

// RowCount sums the partition sizes.
func (p *PartitionedFrame) RowCount() int {
	n := 0
	for _, part := range p.partitions {
		n += part.RowCount()
	}
	return n
}

// MapPartitions runs fn on every partition and returns the per-partition
// results in partition order. The first error cancels the remaining work.
func MapPartitions[R any](ctx context.Context, p *PartitionedFrame, fn func(context.Context, *Frame) (R, error)) ([]R, error) {
	out := make([]R, len(p.partitions))

	g, gCtx := errgroup.WithContext(ctx)
	if p.parallelism > 0 {
		g.SetLimit(p.parallelism)
	}
	for i, part := range p.partitions {
		g.Go(func() error {
			r, err := fn(gCtx, part)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
