/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package batch

import (
	"database/sql"
	"sync"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
	"github.com/suparena/datacheck/registry"
)

// Datasource groups data assets under a name.
type Datasource struct {
	Name string
	ID   string

	assets *registry.Registry[DataAsset]
}

// NewDatasource creates an empty datasource.
func NewDatasource(name string) *Datasource {
	return &Datasource{Name: name, assets: registry.New[DataAsset]("data asset")}
}

// Identifier names the datasource.
func (d *Datasource) Identifier() Identifier {
	return Identifier{Name: d.Name, ID: d.ID}
}

// Asset returns the asset registered under name.
func (d *Datasource) Asset(name string) (DataAsset, error) {
	return d.assets.Get(name)
}

// AssetNames lists the asset names, sorted.
func (d *Datasource) AssetNames() []string {
	return d.assets.Names()
}

// AddFrameAsset registers an asset serving an in-memory frame.
func (d *Datasource) AddFrameAsset(name string, frame *execution.Frame) (*FrameAsset, error) {
	a := &FrameAsset{frame: frame}
	a.init(d, name)
	if err := d.assets.Register(name, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AddCSVAsset registers an asset reading a CSV file on every batch request.
func (d *Datasource) AddCSVAsset(name, path string) (*CSVAsset, error) {
	a := &CSVAsset{path: path}
	a.init(d, name)
	if err := d.assets.Register(name, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AddSQLAsset registers an asset over a database table. orderBy names the
// column giving row-level queries a stable order; "rowid" suits SQLite.
func (d *Datasource) AddSQLAsset(name string, db *sql.DB, table, orderBy string) (*SQLAsset, error) {
	a := &SQLAsset{db: db, table: table, orderBy: orderBy}
	a.init(d, name)
	if err := d.assets.Register(name, a); err != nil {
		return nil, err
	}
	return a, nil
}

// assetBase implements the identity and batch config bookkeeping shared by
// the assets.
type assetBase struct {
	name       string
	id         string
	datasource *Datasource

	mu      sync.RWMutex
	configs map[string]*Config
}

func (a *assetBase) init(d *Datasource, name string) {
	a.name = name
	a.datasource = d
	a.configs = make(map[string]*Config)
}

func (a *assetBase) Identifier() Identifier {
	return Identifier{Name: a.name, ID: a.id}
}

func (a *assetBase) DatasourceIdentifier() Identifier {
	return a.datasource.Identifier()
}

// SetID assigns the persistence identifier of the asset.
func (a *assetBase) SetID(id string) {
	a.id = id
}

func (a *assetBase) SaveBatchConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.NewValidationError("batch_config", err.Error())
	}
	if cfg.Partitioner != nil {
		if err := validate.Struct(cfg.Partitioner); err != nil {
			return errors.NewValidationError("partitioner", err.Error())
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configs[cfg.Name] = cfg
	return nil
}

func (a *assetBase) BatchConfig(name string) (*Config, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cfg, ok := a.configs[name]
	if !ok {
		return nil, errors.NewNotFoundError("batch config", name)
	}
	return cfg, nil
}

// addBatchConfig creates, attaches and saves a batch config on self.
func addBatchConfig(self DataAsset, name string, partitioner *Partitioner) (*Config, error) {
	cfg := &Config{Name: name, Partitioner: partitioner}
	cfg.SetDataAsset(self)
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *assetBase) request(options RequestOptions, partitioner *Partitioner) Request {
	return Request{
		DatasourceName: a.datasource.Name,
		DataAssetName:  a.name,
		Options:        options,
		Partitioner:    partitioner,
	}
}
