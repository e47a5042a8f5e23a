/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/suparena/datacheck/batch"
)

// Names the command line gives to the objects it builds.
const (
	cliDatasource = "cli"
	cliBatch      = "default"
)

// sourceOptions select the data to validate.
type sourceOptions struct {
	csv     string
	sqlite  string
	table   string
	orderBy string
	params  []string
	options []string
}

func (o *sourceOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.csv, "csv", "", "CSV file to validate")
	f.StringVar(&o.sqlite, "sqlite", "", "SQLite database to validate")
	f.StringVar(&o.table, "table", "", "table to validate (with --sqlite)")
	f.StringVar(&o.orderBy, "order-by", "", "column giving SQL rows a stable order")
	f.StringArrayVar(&o.params, "param", nil, "evaluation parameter as name=value (repeatable)")
	f.StringArrayVar(&o.options, "option", nil, "batch request option as column=value (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("csv", "sqlite")
	cmd.MarkFlagsOneRequired("csv", "sqlite")
	cmd.MarkFlagsRequiredTogether("sqlite", "table")
}

// datasource builds a datasource holding one asset with a batch config
// named cliBatch. The returned closer releases the database, if any.
func (o *sourceOptions) datasource(asset string) (*batch.Datasource, *batch.Config, func() error, error) {
	ds := batch.NewDatasource(cliDatasource)
	noop := func() error { return nil }

	if o.csv != "" {
		a, err := ds.AddCSVAsset(asset, o.csv)
		if err != nil {
			return nil, nil, noop, err
		}
		cfg, err := a.AddBatchConfig(cliBatch, nil)
		return ds, cfg, noop, err
	}

	db, err := sql.Open("sqlite3", o.sqlite)
	if err != nil {
		return nil, nil, noop, fmt.Errorf("open %s: %w", o.sqlite, err)
	}
	a, err := ds.AddSQLAsset(asset, db, o.table, o.orderBy)
	if err != nil {
		db.Close()
		return nil, nil, noop, err
	}
	cfg, err := a.AddBatchConfig(cliBatch)
	if err != nil {
		db.Close()
		return nil, nil, noop, err
	}
	return ds, cfg, db.Close, nil
}

func (o *sourceOptions) assetName() string {
	if o.csv != "" {
		return "csv"
	}
	return o.table
}

// evalParams decodes --param values as YAML scalars, so numbers and
// booleans keep their type.
func (o *sourceOptions) evalParams() (map[string]any, error) {
	return parsePairs("param", o.params)
}

func (o *sourceOptions) requestOptions() (batch.RequestOptions, error) {
	pairs, err := parsePairs("option", o.options)
	if err != nil || pairs == nil {
		return nil, err
	}
	return batch.RequestOptions(pairs), nil
}

func parsePairs(flag string, raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("--%s %q: want name=value", flag, kv)
		}
		var v any
		if err := yaml.Unmarshal([]byte(value), &v); err != nil || v == nil {
			v = value
		}
		out[name] = v
	}
	return out, nil
}
