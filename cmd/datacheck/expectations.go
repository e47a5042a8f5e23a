/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suparena/datacheck/expectation"
)

func newExpectationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expectations",
		Short: "List the registered expectation types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, typ := range expectation.Types() {
				e, err := expectation.Lookup(typ)
				if err != nil {
					return err
				}
				keys := append(append([]string(nil), e.DomainKeys()...), e.SuccessKeys()...)
				fmt.Fprintf(cmd.OutOrStdout(), "%s(%s)\n", typ, strings.Join(keys, ", "))
			}
			return nil
		},
	}
}
