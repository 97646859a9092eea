package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info <formula>",
		Short: "Show a formula's descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.app.Formulae.GetFormula(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", f.Name, f.Version)
			fmt.Fprintf(out, "%s\n", f.Description)
			fmt.Fprintf(out, "Homepage: %s\n", f.Homepage)
			fmt.Fprintf(out, "License:  %s\n", f.License)
			fmt.Fprintf(out, "URL:      %s\n", f.URL)
			if f.ChecksumPending() {
				fmt.Fprintf(out, "SHA-256:  pending\n")
			} else {
				fmt.Fprintf(out, "SHA-256:  %s\n", f.SHA256)
			}
			if f.HasHead() {
				fmt.Fprintf(out, "Head:     %s (%s)\n", f.Head.URL, f.Head.Branch)
			}
			if f.Signature != nil {
				fmt.Fprintf(out, "Signed:   %s\n", f.Signature.URL)
			}
			fmt.Fprintf(out, "Installs: %s\n", strings.Join(f.Install.Bin, ", "))
			fmt.Fprintf(out, "Test:     %s %s (timeout %v)\n", f.MainBinary(), strings.Join(f.Test.Args, " "), f.Test.Timeout)
			return nil
		},
	}
}
