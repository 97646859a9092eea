package main

import (
	"fmt"

	"github.com/spf13/cobra"

	orchestrators "github.com/jwuxan/homebrew-lofetch/internal/domain-orchestrators"
)

func newInstallCmd(c *cli) *cobra.Command {
	var (
		head   bool
		noTest bool
	)

	cmd := &cobra.Command{
		Use:   "install <formula>",
		Short: "Install a formula into the prefix and run its test",
		Args:  cobra.ExactArgs(1),
		Example: `  tap install lofetch
  tap install lofetch --head
  tap install lofetch --prefix /opt/local --no-test`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.app.Orchestrator.InstallFormula(cmd.Context(), args[0], orchestrators.InstallOptions{
				Head:    head,
				RunTest: !noTest,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.GetInstallSummary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&head, "head", false, "Install from the head branch")
	cmd.Flags().BoolVar(&noTest, "no-test", false, "Skip the post-install test")
	return cmd
}
