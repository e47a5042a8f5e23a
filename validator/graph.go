/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package validator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
	"github.com/suparena/datacheck/metrics"
)

type node struct {
	req   metrics.Request
	deps  []string
	level int
	err   error
}

// graph is the deduplicated set of metric requests of one validation run,
// including transitive dependencies. Requests are identified by
// metrics.Request.ID.
type graph struct {
	reg   *metrics.Registry
	nodes map[string]*node
	order []string
}

func newGraph(reg *metrics.Registry) *graph {
	return &graph{reg: reg, nodes: make(map[string]*node)}
}

// add inserts req and its dependencies and returns the id of req. Errors
// resolving dependencies are recorded on the node.
func (g *graph) add(req metrics.Request) string {
	return g.visit(req, map[string]bool{})
}

func (g *graph) visit(req metrics.Request, path map[string]bool) string {
	id := req.ID()
	if _, ok := g.nodes[id]; ok {
		return id
	}
	n := &node{req: req}
	if path[id] {
		n.err = fmt.Errorf("%w: metric dependency cycle through %s", errors.ErrInternal, id)
		g.insert(id, n)
		return id
	}
	path[id] = true
	defer delete(path, id)

	deps, err := g.reg.Dependencies(req)
	if err != nil {
		n.err = err
	}
	for _, d := range deps {
		depID := g.visit(d, path)
		n.deps = append(n.deps, depID)
		if lvl := g.nodes[depID].level + 1; lvl > n.level {
			n.level = lvl
		}
	}
	g.insert(id, n)
	return id
}

func (g *graph) insert(id string, n *node) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = n
	g.order = append(g.order, id)
}

// levels groups node ids so that every dependency sits in an earlier level.
func (g *graph) levels() [][]string {
	var out [][]string
	for _, id := range g.order {
		lvl := g.nodes[id].level
		for len(out) <= lvl {
			out = append(out, nil)
		}
		out[lvl] = append(out[lvl], id)
	}
	return out
}

// failure returns the first error found in id or its dependencies.
func (g *graph) failure(id string) error {
	n := g.nodes[id]
	if n.err != nil {
		return n.err
	}
	for _, d := range n.deps {
		if err := g.failure(d); err != nil {
			return err
		}
	}
	return nil
}

// execute evaluates the graph level by level against batch. Nodes within a
// level run concurrently, at most limit at a time. A failing node does not
// stop its siblings; its dependents inherit the failure.
func (g *graph) execute(ctx context.Context, batch execution.Batch, limit int, log *slog.Logger, obs *Metrics) metrics.Values {
	values := metrics.Values{}
	for _, level := range g.levels() {
		computed := make([]any, len(level))

		eg, egCtx := errgroup.WithContext(ctx)
		if limit > 0 {
			eg.SetLimit(limit)
		}
		for i, id := range level {
			n := g.nodes[id]
			if n.err != nil {
				continue
			}
			if err := g.depFailure(n); err != nil {
				n.err = err
				continue
			}
			eg.Go(func() error {
				v, err := g.evaluate(egCtx, batch, n, values)
				obs.observeMetric(batch.Kind(), err)
				if err != nil {
					log.Debug("metric failed", "metric", n.req.Name, "error", err)
					n.err = err
					return nil
				}
				computed[i] = v
				return nil
			})
		}
		_ = eg.Wait()

		for i, id := range level {
			if g.nodes[id].err == nil {
				values[id] = computed[i]
			}
		}
	}
	return values
}

func (g *graph) depFailure(n *node) error {
	for _, d := range n.deps {
		if err := g.nodes[d].err; err != nil {
			return err
		}
	}
	return nil
}

func (g *graph) evaluate(ctx context.Context, batch execution.Batch, n *node, values metrics.Values) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, errors.NewMetricEvaluationError(n.req.Name, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	strategy, err := g.reg.Resolve(n.req.Name, batch.Kind())
	if err != nil {
		return nil, err
	}
	v, err = strategy(ctx, batch, n.req.Params, values)
	if err != nil {
		return nil, errors.NewMetricEvaluationError(n.req.Name, err)
	}
	return v, nil
}
