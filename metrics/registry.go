/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

type capability struct {
	metric  string
	backend execution.BackendKind
}

// Registry is the capability table mapping (metric, backend kind) to a
// Strategy. It is safe for concurrent use and normally populated during
// initialization.
type Registry struct {
	mu         sync.RWMutex
	defs       map[string]Definition
	strategies map[capability]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:       make(map[string]Definition),
		strategies: make(map[capability]Strategy),
	}
}

// Register adds a metric definition.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return errors.NewValidationError("name", "metric name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return errors.NewAlreadyExistsError("metric", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// RegisterStrategy binds the evaluation of metric for one backend kind.
func (r *Registry) RegisterStrategy(metric string, kind execution.BackendKind, s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[metric]; !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownMetric, metric)
	}
	key := capability{metric: metric, backend: kind}
	if _, exists := r.strategies[key]; exists {
		return errors.NewAlreadyExistsError("strategy", fmt.Sprintf("%s/%s", metric, kind))
	}
	r.strategies[key] = s
	return nil
}

// Definition returns the definition registered under name.
func (r *Registry) Definition(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", errors.ErrUnknownMetric, name)
	}
	return def, nil
}

// Resolve returns the strategy for metric on kind. A known metric without
// a strategy for kind yields a BackendUnavailableError.
func (r *Registry) Resolve(metric string, kind execution.BackendKind) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.defs[metric]; !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownMetric, metric)
	}
	s, ok := r.strategies[capability{metric: metric, backend: kind}]
	if !ok {
		return nil, errors.NewBackendUnavailableError(metric, string(kind))
	}
	return s, nil
}

// Dependencies returns the direct dependencies of req.
func (r *Registry) Dependencies(req Request) ([]Request, error) {
	def, err := r.Definition(req.Name)
	if err != nil {
		return nil, err
	}
	if def.Dependencies == nil {
		return nil, nil
	}
	return def.Dependencies(req.Params), nil
}

// Backends lists the backend kinds metric can run on.
func (r *Registry) Backends(metric string) []execution.BackendKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var kinds []execution.BackendKind
	for key := range r.strategies {
		if key.metric == metric {
			kinds = append(kinds, key.backend)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Names lists all registered metric names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// registerAll adds def and its per-backend strategies in one step.
func (r *Registry) registerAll(def Definition, strategies map[execution.BackendKind]Strategy) error {
	if err := r.Register(def); err != nil {
		return err
	}
	for kind, s := range strategies {
		if err := r.RegisterStrategy(def.Name, kind, s); err != nil {
			return err
		}
	}
	return nil
}

// everyBackend maps s to every known backend kind.
func everyBackend(s Strategy) map[execution.BackendKind]Strategy {
	out := make(map[execution.BackendKind]Strategy, len(execution.Kinds()))
	for _, kind := range execution.Kinds() {
		out[kind] = s
	}
	return out
}
