/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package validator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/datacheck/batch"
	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
	"github.com/suparena/datacheck/expectation"
	"github.com/suparena/datacheck/metrics"
	"github.com/suparena/datacheck/result"
)

// State is the progress of a Validator.
type State int

const (
	Unresolved State = iota
	BatchResolved
	MetricsCompiled
	Executed
	Aggregated
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "UNRESOLVED"
	case BatchResolved:
		return "BATCH_RESOLVED"
	case MetricsCompiled:
		return "METRICS_COMPILED"
	case Executed:
		return "EXECUTED"
	case Aggregated:
		return "AGGREGATED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// BatchResolver builds the batch a validator runs against.
type BatchResolver interface {
	Resolve(ctx context.Context, cfg *batch.Config, options batch.RequestOptions) (execution.Batch, error)
}

// ResolverFunc adapts a function to BatchResolver.
type ResolverFunc func(ctx context.Context, cfg *batch.Config, options batch.RequestOptions) (execution.Batch, error)

func (f ResolverFunc) Resolve(ctx context.Context, cfg *batch.Config, options batch.RequestOptions) (execution.Batch, error) {
	return f(ctx, cfg, options)
}

// assetResolver asks the config's data asset for the batch.
type assetResolver struct{}

func (assetResolver) Resolve(ctx context.Context, cfg *batch.Config, options batch.RequestOptions) (execution.Batch, error) {
	return cfg.GetBatch(ctx, options)
}

// Validator runs expectations against the batch of one batch config. The
// batch is resolved on first use and reused for the lifetime of the
// Validator. A Validator must not be used from several goroutines at once.
type Validator struct {
	batchConfig    *batch.Config
	format         expectation.Format
	options        batch.RequestOptions
	maxConcurrency int
	logger         *slog.Logger
	registry       *metrics.Registry
	resolver       BatchResolver
	metrics        *Metrics

	batch execution.Batch
	state State
}

// New creates a validator for cfg.
func New(cfg *batch.Config, opts ...Option) *Validator {
	v := &Validator{
		batchConfig:    cfg,
		format:         expectation.DefaultFormat,
		maxConcurrency: 1,
		logger:         slog.Default(),
		resolver:       assetResolver{},
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.registry == nil {
		v.registry = metrics.Default()
	}
	return v
}

// State reports how far the last run progressed.
func (v *Validator) State() State {
	return v.state
}

// ActiveBatchID resolves the batch if needed and returns its id.
func (v *Validator) ActiveBatchID(ctx context.Context) (string, error) {
	b, err := v.activeBatch(ctx)
	if err != nil {
		return "", err
	}
	return b.ID(), nil
}

func (v *Validator) activeBatch(ctx context.Context) (execution.Batch, error) {
	if v.batch != nil {
		return v.batch, nil
	}
	name := ""
	if v.batchConfig != nil {
		name = v.batchConfig.Name
	}
	if v.batchConfig == nil {
		return nil, errors.NewBatchResolutionError(name, errors.NewValidationError("batch_config", "no batch config"))
	}
	b, err := v.resolver.Resolve(ctx, v.batchConfig, v.options)
	if err != nil {
		return nil, errors.NewBatchResolutionError(name, err)
	}
	if b == nil {
		return nil, errors.NewBatchResolutionError(name, fmt.Errorf("%w: resolver returned no batch", errors.ErrInternal))
	}
	v.logger.Debug("batch resolved", "batch_config", name, "batch_id", b.ID(), "backend", b.Kind())
	v.batch = b
	return b, nil
}

// ValidateExpectation validates a single configuration.
func (v *Validator) ValidateExpectation(ctx context.Context, cfg expectation.Configuration, evalParams map[string]any) (result.ExpectationValidationResult, error) {
	results, err := v.validateConfigs(ctx, []expectation.Configuration{cfg}, evalParams)
	if err != nil {
		return result.ExpectationValidationResult{}, err
	}
	if len(results) != 1 {
		return result.ExpectationValidationResult{}, fmt.Errorf("%w: expected exactly one result, got %d", errors.ErrInternal, len(results))
	}
	return results[0], nil
}

// ValidateSuite validates every configuration of suite against the batch.
func (v *Validator) ValidateSuite(ctx context.Context, suite *expectation.Suite, evalParams map[string]any) (result.SuiteValidationResult, error) {
	if suite == nil {
		return result.SuiteValidationResult{}, errors.NewValidationError("suite", "suite is required")
	}
	started := time.Now()
	results, err := v.validateConfigs(ctx, suite.Expectations, evalParams)
	if err != nil {
		return result.SuiteValidationResult{}, err
	}
	out := result.NewSuiteResult(results, result.Meta{
		SuiteName:     suite.Name,
		ActiveBatchID: v.batch.ID(),
		RunID:         uuid.NewString(),
		RunTime:       strfmt.DateTime(started.UTC()),
	})
	v.logger.Info("suite validated",
		"suite", suite.Name,
		"batch_id", v.batch.ID(),
		"success", out.Success,
		"evaluated", out.Statistics.EvaluatedExpectations,
		"unsuccessful", out.Statistics.UnsuccessfulExpectations)
	return out, nil
}

type plan struct {
	cfg  expectation.Configuration
	exp  expectation.Expectation
	deps []string
	err  error
}

func (v *Validator) validateConfigs(ctx context.Context, cfgs []expectation.Configuration, evalParams map[string]any) ([]result.ExpectationValidationResult, error) {
	started := time.Now()
	v.state = Unresolved
	b, err := v.activeBatch(ctx)
	if err != nil {
		v.logger.Error("batch resolution failed", "error", err)
		return nil, err
	}
	v.state = BatchResolved

	g := newGraph(v.registry)
	plans := make([]plan, len(cfgs))
	for i, cfg := range cfgs {
		plans[i] = v.compile(g, cfg, evalParams)
	}
	v.state = MetricsCompiled

	values := g.execute(ctx, b, v.maxConcurrency, v.logger, v.metrics)
	v.state = Executed

	results := make([]result.ExpectationValidationResult, len(plans))
	for i, p := range plans {
		results[i] = v.interpret(g, p, values)
	}
	v.state = Aggregated
	v.metrics.observeResults(results, started)
	return results, nil
}

func (v *Validator) compile(g *graph, cfg expectation.Configuration, evalParams map[string]any) plan {
	p := plan{cfg: cfg}
	if _, ok := cfg.Kwargs[expectation.KeyResultFormat]; !ok {
		cfg = cfg.Clone()
		cfg.Kwargs[expectation.KeyResultFormat] = string(v.format)
	}
	cfg, err := cfg.Substitute(evalParams)
	if err != nil {
		p.err = err
		return p
	}
	bound, exp, err := expectation.Bind(cfg)
	if err != nil {
		p.err = err
		return p
	}
	p.cfg, p.exp = bound, exp

	reqs, err := dependencies(exp, bound)
	if err != nil {
		p.err = err
		return p
	}
	for _, req := range reqs {
		p.deps = append(p.deps, g.add(req))
	}
	return p
}

func (v *Validator) interpret(g *graph, p plan, values metrics.Values) result.ExpectationValidationResult {
	if p.err != nil {
		v.logger.Warn("expectation rejected", "expectation", p.cfg.Type, "error", p.err)
		return result.FromError(p.cfg, p.err)
	}
	for _, id := range p.deps {
		if err := g.failure(id); err != nil {
			v.logger.Warn("expectation metric failed", "expectation", p.cfg.Type, "column", p.cfg.Column(), "error", err)
			return result.FromError(p.cfg, err)
		}
	}
	out, err := interpretOutcome(p.exp, p.cfg, values)
	if err != nil {
		v.logger.Warn("expectation interpretation failed", "expectation", p.cfg.Type, "error", err)
		return result.FromError(p.cfg, err)
	}
	return result.FromOutcome(p.cfg, out)
}

// dependencies and interpretOutcome turn a panicking expectation into an
// error on that expectation alone.
func dependencies(exp expectation.Expectation, cfg expectation.Configuration) (reqs []metrics.Request, err error) {
	defer func() {
		if r := recover(); r != nil {
			reqs, err = nil, fmt.Errorf("%w: %s dependencies panicked: %v", errors.ErrInternal, cfg.Type, r)
		}
	}()
	return exp.Dependencies(cfg)
}

func interpretOutcome(exp expectation.Expectation, cfg expectation.Configuration, values metrics.Values) (out expectation.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = expectation.Outcome{}, fmt.Errorf("%w: %s interpretation panicked: %v", errors.ErrInternal, cfg.Type, r)
		}
	}()
	return exp.Interpret(cfg, values)
}
