/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expectation

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-openapi/strfmt"
	"gopkg.in/yaml.v3"

	"github.com/suparena/datacheck/errors"
)

// Suite is a named, ordered collection of expectation configurations.
type Suite struct {
	// Name identifies the suite within a project.
	// Required: true
	Name string `json:"name" yaml:"name" validate:"required"`

	// ID is assigned when the suite is first persisted.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Expectations run in order.
	Expectations []Configuration `json:"expectations" yaml:"expectations" validate:"dive"`

	Meta SuiteMeta `json:"meta" yaml:"meta"`
}

// SuiteMeta carries suite bookkeeping.
type SuiteMeta struct {
	// Format: date-time
	CreatedAt strfmt.DateTime `json:"created_at" yaml:"created_at"`
	// Version is bumped on every explicit update.
	Version int `json:"version" yaml:"version" validate:"gte=0"`
	// Notes is free text.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// NewSuite creates a suite at version 1.
func NewSuite(name string, cfgs ...Configuration) *Suite {
	return &Suite{
		Name:         name,
		Expectations: cfgs,
		Meta: SuiteMeta{
			CreatedAt: strfmt.DateTime(time.Now().UTC()),
			Version:   1,
		},
	}
}

// Add appends a configuration.
func (s *Suite) Add(cfg Configuration) {
	s.Expectations = append(s.Expectations, cfg)
}

// GetID and SetID expose the persistence identifier.
func (s *Suite) GetID() string   { return s.ID }
func (s *Suite) SetID(id string) { s.ID = id }

// BumpVersion records an explicit update.
func (s *Suite) BumpVersion() { s.Meta.Version++ }

// Validate checks the suite structure and that every configuration names a
// registered expectation type.
func (s *Suite) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.NewValidationError("suite", err.Error())
	}
	for i, cfg := range s.Expectations {
		if _, err := Lookup(cfg.Type); err != nil {
			return fmt.Errorf("expectation %d: %w", i, err)
		}
	}
	return nil
}

// LoadSuite decodes a YAML suite document:
//
//	name: orders
//	expectations:
//	  - type: expect_column_values_to_not_be_null
//	    kwargs: {column: id}
func LoadSuite(r io.Reader) (*Suite, error) {
	var s Suite
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.NewValidationError("suite", fmt.Sprintf("decode yaml: %v", err))
	}
	if s.Meta.Version == 0 {
		s.Meta.Version = 1
	}
	if time.Time(s.Meta.CreatedAt).IsZero() {
		s.Meta.CreatedAt = strfmt.DateTime(time.Now().UTC())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSuiteFile reads a YAML suite from path.
func LoadSuiteFile(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open suite: %w", err)
	}
	defer f.Close()
	return LoadSuite(f)
}
