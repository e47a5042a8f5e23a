/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datacheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/suparena/datacheck/batch"
	"github.com/suparena/datacheck/config"
	"github.com/suparena/datacheck/datastore"
	"github.com/suparena/datacheck/datastore/badger"
	"github.com/suparena/datacheck/datastore/ddb"
	"github.com/suparena/datacheck/datastore/fs"
	"github.com/suparena/datacheck/expectation"
	"github.com/suparena/datacheck/result"
	"github.com/suparena/datacheck/store"
	"github.com/suparena/datacheck/validator"
)

// Store namespaces, used as directory names by the fs backend.
const (
	suitesNamespace  = "expectations"
	configsNamespace = "validation_configs"
)

// Project ties datasources to the suite and validation config stores.
// Validation configs resolve their batch configs through Datasources, so
// datasources must be registered before configs are read back.
type Project struct {
	Datasources       *Datasources
	Suites            *store.Store[*expectation.Suite]
	ValidationConfigs *store.Store[*store.ValidationConfig]

	logger     *slog.Logger
	validation []validator.Option
	closers    []io.Closer
}

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the logger used by the project and its stores.
func WithLogger(l *slog.Logger) Option {
	return func(p *Project) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithValidatorOptions sets defaults for every validator the project
// creates.
func WithValidatorOptions(opts ...validator.Option) Option {
	return func(p *Project) {
		p.validation = append(p.validation, opts...)
	}
}

func newProject(opts []Option) *Project {
	p := &Project{
		Datasources: NewDatasources(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Project) codec() store.ValidationConfigCodec {
	return store.ValidationConfigCodec{
		Suites:  store.SuiteLookup{Suites: p.Suites},
		Batches: p.Datasources,
	}
}

// NewLocalProject creates a project persisting suites and validation
// configs in two key-value stores.
func NewLocalProject(suites, configs datastore.KeyValue, opts ...Option) *Project {
	p := newProject(opts)
	p.Suites = store.NewLocal[*expectation.Suite](suites, store.SuiteCodec{}, store.WithLogger(p.logger))
	p.ValidationConfigs = store.NewLocal[*store.ValidationConfig](configs, p.codec(), store.WithLogger(p.logger))
	return p
}

// NewCloudProject creates a project persisting to a remote.
func NewCloudProject(remote datastore.Remote, opts ...Option) *Project {
	p := newProject(opts)
	p.Suites = store.NewCloud[*expectation.Suite](remote, store.SuiteCodec{}, store.WithLogger(p.logger))
	p.ValidationConfigs = store.NewCloud[*store.ValidationConfig](remote, p.codec(), store.WithLogger(p.logger))
	return p
}

// Open builds a project from cfg. Options given here apply after those
// derived from cfg.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Project, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger()
	format, err := expectation.ParseFormat(cfg.Validation.ResultFormat)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{
		WithLogger(logger),
		WithValidatorOptions(
			validator.WithResultFormat(format),
			validator.WithMaxConcurrency(cfg.Validation.MaxConcurrency),
			validator.WithLogger(logger),
		),
	}, opts...)

	if cfg.Mode == config.ModeCloud {
		client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
			Region:    cfg.DynamoDB.Region,
			AccessKey: cfg.DynamoDB.AccessKey,
			SecretKey: cfg.DynamoDB.SecretKey,
			Endpoint:  cfg.DynamoDB.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("opened cloud project", "table", cfg.DynamoDB.Table)
		return NewCloudProject(ddb.New(client, cfg.DynamoDB.Table, logger), opts...), nil
	}

	switch cfg.Store.Backend {
	case config.BackendFS:
		suites, err := fs.New(filepath.Join(cfg.Store.Dir, suitesNamespace))
		if err != nil {
			return nil, err
		}
		configs, err := fs.New(filepath.Join(cfg.Store.Dir, configsNamespace))
		if err != nil {
			return nil, err
		}
		logger.Debug("opened local project", "backend", cfg.Store.Backend, "dir", cfg.Store.Dir)
		return NewLocalProject(suites, configs, opts...), nil

	case config.BackendBadger, config.BackendMemory:
		bc := badger.Config{Namespace: suitesNamespace, Logger: logger}
		if cfg.Store.Backend == config.BackendMemory {
			bc.InMemory = true
		} else {
			bc.Path = filepath.Join(cfg.Store.Dir, "badger")
		}
		db, err := badger.Open(bc)
		if err != nil {
			return nil, err
		}
		p := NewLocalProject(db, db.Namespace(configsNamespace), opts...)
		p.closers = append(p.closers, db)
		logger.Debug("opened local project", "backend", cfg.Store.Backend, "dir", cfg.Store.Dir)
		return p, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// Close releases the backends the project opened.
func (p *Project) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}

// AddSuite persists s under its name.
func (p *Project) AddSuite(ctx context.Context, s *expectation.Suite) error {
	return p.Suites.Add(ctx, p.Suites.Key(s.Name, s.ID), s)
}

// Suite loads the suite named name.
func (p *Project) Suite(ctx context.Context, name string) (*expectation.Suite, error) {
	return p.Suites.Get(ctx, p.Suites.Key(name, ""))
}

// AddValidationConfig persists vc. In local mode the suite is stored by
// reference, so a suite that was never saved is saved first.
func (p *Project) AddValidationConfig(ctx context.Context, vc *store.ValidationConfig) error {
	if p.Suites.Mode() == store.ModeLocal && vc.Suite != nil && vc.Suite.ID == "" {
		if err := p.AddSuite(ctx, vc.Suite); err != nil {
			return fmt.Errorf("save suite of validation config %s: %w", vc.Name, err)
		}
	}
	return p.ValidationConfigs.Add(ctx, p.ValidationConfigs.Key(vc.Name, vc.ID), vc)
}

// ValidationConfig loads the validation config named name.
func (p *Project) ValidationConfig(ctx context.Context, name string) (*store.ValidationConfig, error) {
	return p.ValidationConfigs.Get(ctx, p.ValidationConfigs.Key(name, ""))
}

// Validator creates a validator over cfg with the project defaults.
func (p *Project) Validator(cfg *batch.Config, opts ...validator.Option) *validator.Validator {
	return validator.New(cfg, p.validatorOptions(opts)...)
}

// Run loads the validation config named name and runs it.
func (p *Project) Run(ctx context.Context, name string, evalParams map[string]any, opts ...validator.Option) (result.SuiteValidationResult, error) {
	vc, err := p.ValidationConfig(ctx, name)
	if err != nil {
		return result.SuiteValidationResult{}, err
	}
	p.logger.Info("running validation config", "name", name, "suite", vc.Suite.Name, "batch_config", vc.Data.Name)
	return vc.Run(ctx, evalParams, p.validatorOptions(opts)...)
}

func (p *Project) validatorOptions(extra []validator.Option) []validator.Option {
	out := make([]validator.Option, 0, len(p.validation)+len(extra))
	out = append(out, p.validation...)
	return append(out, extra...)
}
