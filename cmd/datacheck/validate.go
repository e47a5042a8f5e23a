/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/datacheck/expectation"
	"github.com/suparena/datacheck/result"
	"github.com/suparena/datacheck/store"
	"github.com/suparena/datacheck/validator"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		src       sourceOptions
		suitePath string
		format    string
		save      string
	)

	cmd := &cobra.Command{
		Use:   "validate --suite <file> (--csv <file> | --sqlite <db> --table <name>)",
		Short: "Validate a data source against a suite file",
		Long:  "Load a YAML expectation suite, validate the data source against it and print the result as JSON. Exits non-zero when an expectation fails.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := expectation.LoadSuiteFile(suitePath)
			if err != nil {
				return err
			}
			project, err := root.openProject(cmd)
			if err != nil {
				return err
			}
			defer project.Close()

			ds, cfg, closeSource, err := src.datasource(src.assetName())
			if err != nil {
				return err
			}
			defer closeSource()

			params, err := src.evalParams()
			if err != nil {
				return err
			}
			opts, err := runOptions(format, &src)
			if err != nil {
				return err
			}

			if save != "" {
				if err := project.Datasources.Register(ds); err != nil {
					return err
				}
				if err := project.AddValidationConfig(cmd.Context(), store.NewValidationConfig(save, cfg, suite)); err != nil {
					return fmt.Errorf("save validation config %s: %w", save, err)
				}
			}

			res, err := project.Validator(cfg, opts...).ValidateSuite(cmd.Context(), suite, params)
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
	src.bind(cmd)
	cmd.Flags().StringVar(&suitePath, "suite", "", "YAML expectation suite")
	cmd.Flags().StringVar(&format, "format", "", "result format: BOOLEAN_ONLY, BASIC, SUMMARY or COMPLETE")
	cmd.Flags().StringVar(&save, "save", "", "also save the suite and source as a validation config with this name")
	_ = cmd.MarkFlagRequired("suite")
	return cmd
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		src    sourceOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "run <name> (--csv <file> | --sqlite <db> --table <name>)",
		Short: "Run a saved validation config",
		Long:  "Run a validation config saved with validate --save. The data source flags must name the same source kind, CSV or table, that was saved.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := root.openProject(cmd)
			if err != nil {
				return err
			}
			defer project.Close()

			ds, _, closeSource, err := src.datasource(src.assetName())
			if err != nil {
				return err
			}
			defer closeSource()
			if err := project.Datasources.Register(ds); err != nil {
				return err
			}

			params, err := src.evalParams()
			if err != nil {
				return err
			}
			opts, err := runOptions(format, &src)
			if err != nil {
				return err
			}
			res, err := project.Run(cmd.Context(), args[0], params, opts...)
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
	src.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "", "result format: BOOLEAN_ONLY, BASIC, SUMMARY or COMPLETE")
	return cmd
}

func runOptions(format string, src *sourceOptions) ([]validator.Option, error) {
	var opts []validator.Option
	if format != "" {
		f, err := expectation.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, validator.WithResultFormat(f))
	}
	reqOpts, err := src.requestOptions()
	if err != nil {
		return nil, err
	}
	if reqOpts != nil {
		opts = append(opts, validator.WithBatchRequestOptions(reqOpts))
	}
	return opts, nil
}

func report(cmd *cobra.Command, res result.SuiteValidationResult) error {
	out, err := res.JSON()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("validation failed: %d of %d expectations unsuccessful",
			res.Statistics.UnsuccessfulExpectations, res.Statistics.EvaluatedExpectations)
	}
	return nil
}
