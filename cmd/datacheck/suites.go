/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/datacheck/expectation"
	"github.com/suparena/datacheck/store"
)

func newSuitesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suites",
		Short: "Manage stored expectation suites",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored suites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := root.openProject(cmd)
			if err != nil {
				return err
			}
			defer project.Close()

			keys, err := project.Suites.ListKeys(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				name := k.String()
				if ci, ok := k.(store.CloudIdentifier); ok {
					name = fmt.Sprintf("%s\t%s", ci.ResourceName, ci.ID)
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	var update bool
	add := &cobra.Command{
		Use:   "add <file>",
		Short: "Store a YAML suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := expectation.LoadSuiteFile(args[0])
			if err != nil {
				return err
			}
			project, err := root.openProject(cmd)
			if err != nil {
				return err
			}
			defer project.Close()

			if update {
				err = project.Suites.Update(cmd.Context(), project.Suites.Key(suite.Name, suite.ID), suite)
			} else {
				err = project.AddSuite(cmd.Context(), suite)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tversion %d\n", suite.Name, suite.ID, suite.Meta.Version)
			return nil
		},
	}
	add.Flags().BoolVar(&update, "update", false, "replace the stored suite of the same name")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored suite as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := root.openProject(cmd)
			if err != nil {
				return err
			}
			defer project.Close()

			suite, err := project.Suite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(suite)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a stored suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := root.openProject(cmd)
			if err != nil {
				return err
			}
			defer project.Close()
			return project.Suites.Remove(cmd.Context(), project.Suites.Key(args[0], ""))
		},
	})
	return cmd
}
