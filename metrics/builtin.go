/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"fmt"
	"sync"
)

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// RegisterBuiltins adds the table metrics, column aggregates and built-in
// column conditions to r.
func RegisterBuiltins(r *Registry) error {
	if err := registerTableMetrics(r); err != nil {
		return err
	}
	if err := registerAggregates(r); err != nil {
		return err
	}
	for _, c := range builtinConditions() {
		if err := RegisterColumnCondition(r, c); err != nil {
			return fmt.Errorf("registering %s: %w", c.Name, err)
		}
	}
	return nil
}

// Default returns the process-wide registry holding the built-in metrics.
// Custom metrics registered on it become visible to every validator that
// does not bring its own registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltins(defaultRegistry); err != nil {
			panic(fmt.Sprintf("metrics: built-in registration failed: %v", err))
		}
	})
	return defaultRegistry
}
