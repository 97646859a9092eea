package main

import (
	"github.com/spf13/cobra"

	"github.com/jwuxan/homebrew-lofetch/internal/app"
	"github.com/jwuxan/homebrew-lofetch/internal/config"
)

// cli carries state shared by all subcommands
type cli struct {
	configFile string
	app        *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "tap",
		Short: "Install and test formulae from this tap",
		Long: `tap - formula runner for the lofetch tap

Loads formula descriptors from the Formula directory, fetches and verifies
their release archives, installs the declared binaries into a prefix and runs
the smoke test.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{
				ConfigFile: c.configFile,
				Flags:      cmd.Flags(),
			})
			if err != nil {
				return err
			}

			a, err := app.New(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/tap/config.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("formula-dir", "", "Directory holding formula descriptors (default Formula)")
	flags.String("prefix", "", "Install prefix (default $HOME/.local)")
	flags.String("cache-dir", "", "Download cache directory")
	flags.String("checksum-policy", "", "Handling of pending checksums: warn or strict")

	root.AddCommand(
		newListCmd(c),
		newInfoCmd(c),
		newAuditCmd(c),
		newFetchCmd(c),
		newInstallCmd(c),
		newTestCmd(c),
		newCleanupCmd(c),
	)

	return root
}
