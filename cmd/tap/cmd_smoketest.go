package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "test <formula>",
		Short: "Run the smoke test of an installed formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Orchestrator.TestFormula(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s test passed\n", args[0])
			return nil
		},
	}
}
