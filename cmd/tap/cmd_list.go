package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available formulae",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formulae, err := c.app.Formulae.ListFormulae(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing formulae: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Available formulae (%d total):\n\n", len(formulae))
			for _, f := range formulae {
				version := f.Version
				if version == "" {
					version = "-"
				}
				fmt.Fprintf(out, "  %-20s %-10s %s\n", f.Name, version, f.Description)
			}
			return nil
		},
	}
}
