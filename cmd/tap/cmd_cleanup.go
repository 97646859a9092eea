package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCmd(c *cli) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "cleanup <formula>",
		Short: "Remove cached downloads of old versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := c.app.Orchestrator.CleanupCache(cmd.Context(), args[0], all)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			fmt.Fprintf(out, "%d cache entries removed\n", len(removed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also remove the current version")
	return cmd
}
