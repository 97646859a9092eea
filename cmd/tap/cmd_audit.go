package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
)

func newAuditCmd(c *cli) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "audit [formula...]",
		Short: "Check formula descriptors for problems",
		Long: `Check formula descriptors for problems.

Errors fail the audit. Warnings, such as a pending checksum, only fail
the audit with --strict.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var formulae []*entities.Formula
			if len(args) == 0 {
				all, err := c.app.Formulae.ListFormulae(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing formulae: %w", err)
				}
				formulae = all
			}
			for _, name := range args {
				f, err := c.app.Formulae.GetFormula(cmd.Context(), name)
				if err != nil {
					return err
				}
				formulae = append(formulae, f)
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, f := range formulae {
				report := c.app.Audit.Audit(f)
				if len(report.Problems) == 0 {
					fmt.Fprintf(out, "✅ %s\n", f.Name)
					continue
				}

				mark := "⚠️"
				if !report.IsClean(strict) {
					mark = "❌"
					failed++
				}
				fmt.Fprintf(out, "%s %s\n", mark, f.Name)
				for _, p := range report.Problems {
					fmt.Fprintf(out, "   %s\n", p)
				}
			}

			if failed > 0 {
				return fmt.Errorf("audit failed for %d of %d formulae", failed, len(formulae))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	return cmd
}
