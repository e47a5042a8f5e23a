/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/suparena/datacheck/batch"
	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/expectation"
	"github.com/suparena/datacheck/result"
	"github.com/suparena/datacheck/storagemodels"
	validation "github.com/suparena/datacheck/validator"
)

var validate = validator.New()

// ValidationConfig pairs a batch config with the suite to run on it.
type ValidationConfig struct {
	Name  string             `validate:"required"`
	Data  *batch.Config      `validate:"required"`
	Suite *expectation.Suite `validate:"required"`
	// ID is assigned once, at first persistence.
	ID string
}

// NewValidationConfig creates an unsaved validation config.
func NewValidationConfig(name string, data *batch.Config, suite *expectation.Suite) *ValidationConfig {
	return &ValidationConfig{Name: name, Data: data, Suite: suite}
}

func (v *ValidationConfig) GetID() string   { return v.ID }
func (v *ValidationConfig) SetID(id string) { v.ID = id }

// Run validates the suite against the batch config.
func (v *ValidationConfig) Run(ctx context.Context, evalParams map[string]any, opts ...validation.Option) (result.SuiteValidationResult, error) {
	if err := validate.Struct(v); err != nil {
		return result.SuiteValidationResult{}, errors.NewValidationError("validation_config", err.Error())
	}
	return validation.New(v.Data, opts...).ValidateSuite(ctx, v.Suite, evalParams)
}

// SuiteResolver finds persisted suites. id may be empty.
type SuiteResolver interface {
	ResolveSuite(ctx context.Context, name, id string) (*expectation.Suite, error)
}

// BatchConfigResolver finds batch configs through their identifier bundle.
type BatchConfigResolver interface {
	ResolveBatchConfig(ctx context.Context, bundle batch.IdentifierBundle) (*batch.Config, error)
}

// localValidationConfig references its suite and batch config by identity.
type localValidationConfig struct {
	Name  string                 `json:"name"`
	ID    string                 `json:"id,omitempty"`
	Data  batch.IdentifierBundle `json:"data"`
	Suite batch.Identifier       `json:"suite"`
}

// cloudValidationConfig inlines its suite.
type cloudValidationConfig struct {
	Name  string                 `json:"name"`
	ID    string                 `json:"id,omitempty"`
	Data  batch.IdentifierBundle `json:"data"`
	Suite *expectation.Suite     `json:"suite"`
}

// ValidationConfigCodec encodes validation configs. Decoding rehydrates the
// referenced suite and batch config through the resolvers.
type ValidationConfigCodec struct {
	Suites  SuiteResolver
	Batches BatchConfigResolver
}

func (ValidationConfigCodec) ResourceType() storagemodels.ResourceType {
	return storagemodels.ResourceValidationConfig
}

func checkValidationConfig(v *ValidationConfig) (batch.IdentifierBundle, error) {
	if err := validate.Struct(v); err != nil {
		return batch.IdentifierBundle{}, errors.NewValidationError("validation_config", err.Error())
	}
	return v.Data.IdentifierBundle()
}

func (c ValidationConfigCodec) EncodeLocal(v *ValidationConfig) ([]byte, error) {
	bundle, err := checkValidationConfig(v)
	if err != nil {
		return nil, err
	}
	out, err := canonicalJSON(localValidationConfig{
		Name:  v.Name,
		ID:    v.ID,
		Data:  bundle,
		Suite: batch.Identifier{Name: v.Suite.Name, ID: v.Suite.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("encode validation config %s: %w", v.Name, err)
	}
	return out, nil
}

func (c ValidationConfigCodec) DecodeLocal(ctx context.Context, data []byte) (*ValidationConfig, error) {
	var doc localValidationConfig
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewStoreParseError(fmt.Sprintf("invalid validation config: %v", err), string(data))
	}
	if c.Suites == nil {
		return nil, fmt.Errorf("%w: no suite resolver configured", errors.ErrInternal)
	}
	suite, err := c.Suites.ResolveSuite(ctx, doc.Suite.Name, doc.Suite.ID)
	if err != nil {
		return nil, fmt.Errorf("validation config %s: suite: %w", doc.Name, err)
	}
	cfg, err := c.resolveBatch(ctx, doc.Name, doc.Data)
	if err != nil {
		return nil, err
	}
	return &ValidationConfig{Name: doc.Name, ID: doc.ID, Data: cfg, Suite: suite}, nil
}

func (c ValidationConfigCodec) EncodeCloud(v *ValidationConfig) (json.RawMessage, error) {
	bundle, err := checkValidationConfig(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cloudValidationConfig{Name: v.Name, ID: v.ID, Data: bundle, Suite: v.Suite})
}

func (c ValidationConfigCodec) DecodeCloud(ctx context.Context, body json.RawMessage) (*ValidationConfig, error) {
	var doc cloudValidationConfig
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.NewStoreParseError(fmt.Sprintf("invalid validation config: %v", err), string(body))
	}
	if doc.Suite == nil {
		return nil, errors.NewStoreParseError("missing suite", string(body))
	}
	data, err := c.resolveBatch(ctx, doc.Name, doc.Data)
	if err != nil {
		return nil, err
	}
	return &ValidationConfig{Name: doc.Name, ID: doc.ID, Data: data, Suite: doc.Suite}, nil
}

func (c ValidationConfigCodec) resolveBatch(ctx context.Context, name string, bundle batch.IdentifierBundle) (*batch.Config, error) {
	if c.Batches == nil {
		return nil, fmt.Errorf("%w: no batch config resolver configured", errors.ErrInternal)
	}
	cfg, err := c.Batches.ResolveBatchConfig(ctx, bundle)
	if err != nil {
		return nil, fmt.Errorf("validation config %s: batch config: %w", name, err)
	}
	return cfg, nil
}
