/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datacheck

import (
	"context"
	"sort"
	"sync"

	"github.com/suparena/datacheck/batch"
	"github.com/suparena/datacheck/errors"
)

// Datasources is a thread-safe set of datasources keyed by name. It
// resolves the batch configs referenced by persisted validation configs.
type Datasources struct {
	mu      sync.RWMutex
	sources map[string]*batch.Datasource
}

// NewDatasources creates an empty set.
func NewDatasources() *Datasources {
	return &Datasources{
		sources: make(map[string]*batch.Datasource),
	}
}

// Register adds ds under its name.
func (d *Datasources) Register(ds *batch.Datasource) error {
	if ds == nil || ds.Name == "" {
		return errors.NewValidationError("datasource", "a named datasource is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.sources[ds.Name]; exists {
		return errors.NewAlreadyExistsError("datasource", ds.Name)
	}
	d.sources[ds.Name] = ds
	return nil
}

// Get returns the datasource registered under name.
func (d *Datasources) Get(name string) (*batch.Datasource, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ds, exists := d.sources[name]
	if !exists {
		return nil, errors.NewNotFoundError("datasource", name)
	}
	return ds, nil
}

// Remove deletes the datasource registered under name.
func (d *Datasources) Remove(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.sources[name]; !exists {
		return errors.NewNotFoundError("datasource", name)
	}
	delete(d.sources, name)
	return nil
}

// Names lists the registered datasource names, sorted.
func (d *Datasources) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.sources))
	for k := range d.sources {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ResolveBatchConfig walks datasource, asset and batch definition. Ids in
// the bundle, when both sides carry one, must match.
func (d *Datasources) ResolveBatchConfig(_ context.Context, bundle batch.IdentifierBundle) (*batch.Config, error) {
	ds, err := d.Get(bundle.Datasource.Name)
	if err != nil {
		return nil, err
	}
	if err := sameID(bundle.Datasource, ds.Identifier()); err != nil {
		return nil, err
	}
	asset, err := ds.Asset(bundle.Asset.Name)
	if err != nil {
		return nil, err
	}
	if err := sameID(bundle.Asset, asset.Identifier()); err != nil {
		return nil, err
	}
	cfg, err := asset.BatchConfig(bundle.BatchDefinition.Name)
	if err != nil {
		return nil, err
	}
	if err := sameID(bundle.BatchDefinition, batch.Identifier{Name: cfg.Name, ID: cfg.ID}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sameID(want, got batch.Identifier) error {
	if want.ID != "" && got.ID != "" && want.ID != got.ID {
		return errors.NewIdentityConflictError(want.Name, got.ID, want.ID)
	}
	return nil
}
