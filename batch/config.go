/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package batch

import (
	"context"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

// Identifier names a persisted object. ID is empty until assigned.
type Identifier struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// IdentifierBundle locates a batch config through its datasource and asset.
type IdentifierBundle struct {
	Datasource      Identifier `json:"datasource"`
	Asset           Identifier `json:"asset"`
	BatchDefinition Identifier `json:"batch_definition"`
}

// DataAsset is a named source of batches owned by a datasource. The asset,
// not the validator, owns persistence of its batch configs.
type DataAsset interface {
	// Identifier names the asset.
	Identifier() Identifier
	// DatasourceIdentifier names the owning datasource.
	DatasourceIdentifier() Identifier
	// BuildBatchRequest checks options against the asset and builds a request.
	BuildBatchRequest(options RequestOptions, partitioner *Partitioner) (Request, error)
	// GetBatch materializes the batch described by req.
	GetBatch(ctx context.Context, req Request) (execution.Batch, error)
	// SaveBatchConfig records cfg under the asset.
	SaveBatchConfig(cfg *Config) error
	// BatchConfig returns the batch config saved under name.
	BatchConfig(name string) (*Config, error)
}

// Config is a named way of requesting batches from a data asset.
type Config struct {
	Name        string       `json:"name" validate:"required"`
	ID          string       `json:"id,omitempty"`
	Partitioner *Partitioner `json:"partitioner,omitempty"`

	asset DataAsset
}

// NewConfig creates a batch config that is not yet attached to an asset.
func NewConfig(name string) *Config {
	return &Config{Name: name}
}

// SetDataAsset attaches the config to asset.
func (c *Config) SetDataAsset(asset DataAsset) {
	c.asset = asset
}

// DataAsset returns the attached asset, nil if none.
func (c *Config) DataAsset() DataAsset {
	return c.asset
}

// BuildBatchRequest delegates to the attached asset.
func (c *Config) BuildBatchRequest(options RequestOptions) (Request, error) {
	if c.asset == nil {
		return Request{}, errors.NewValidationError("data_asset", "batch config "+c.Name+" has no data asset")
	}
	return c.asset.BuildBatchRequest(options, c.Partitioner)
}

// GetBatch builds the request for options and materializes it.
func (c *Config) GetBatch(ctx context.Context, options RequestOptions) (execution.Batch, error) {
	req, err := c.BuildBatchRequest(options)
	if err != nil {
		return nil, err
	}
	return c.asset.GetBatch(ctx, req)
}

// Save persists the config through its asset.
func (c *Config) Save() error {
	if c.asset == nil {
		return errors.NewValidationError("data_asset", "batch config "+c.Name+" has no data asset")
	}
	return c.asset.SaveBatchConfig(c)
}

// IdentifierBundle returns the identity of the config, its asset and its
// datasource. It is used for persistence only.
func (c *Config) IdentifierBundle() (IdentifierBundle, error) {
	if c.asset == nil {
		return IdentifierBundle{}, errors.NewValidationError("data_asset", "batch config "+c.Name+" has no data asset")
	}
	return IdentifierBundle{
		Datasource:      c.asset.DatasourceIdentifier(),
		Asset:           c.asset.Identifier(),
		BatchDefinition: Identifier{Name: c.Name, ID: c.ID},
	}, nil
}
