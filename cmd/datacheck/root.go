/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"

	"github.com/suparena/datacheck"
	"github.com/suparena/datacheck/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "datacheck",
		Short:         "Validate tabular data against expectation suites",
		Long:          "datacheck evaluates expectation suites against CSV files and SQLite tables, and keeps suites and validation configs in a local or DynamoDB-backed store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultFile, "project configuration file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newExpectationsCmd())
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newSuitesCmd(opts))
	return cmd
}

func (o *rootOptions) openProject(cmd *cobra.Command) (*datacheck.Project, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	return datacheck.Open(cmd.Context(), cfg)
}
