package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCmd(c *cli) *cobra.Command {
	var head bool

	cmd := &cobra.Command{
		Use:   "fetch <formula>",
		Short: "Download, verify and extract a formula's source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.app.Orchestrator.FetchFormula(cmd.Context(), args[0], head)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Archive != nil {
				fmt.Fprintf(out, "Archive: %s\n", result.Archive.Path)
			}
			fmt.Fprintf(out, "Source:  %s\n", result.Source.Path)
			if result.ChecksumPending {
				fmt.Fprintf(out, "Warning: checksum pending, archive was not verified\n")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&head, "head", false, "Check out the head branch instead of the release archive")
	return cmd
}
