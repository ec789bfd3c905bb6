// Init command for the fruits CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/fruits/internal/paths"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config directory, config.yaml and data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE already wrote config.yaml; attaching creates the
		// data directory for the sqlite backend.
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}
		cup, _, err := openFruits(cmd.Context())
		if err != nil {
			return err
		}
		defer detach(cup)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "fruits initialized")
		fmt.Fprintln(out, "  config: ", paths.ConfigFile(configDir))
		fmt.Fprintln(out, "  backend:", cfg.GetString(cfgKeyBackend))
		fmt.Fprintln(out, "  data:   ", dataDir)
		return nil
	},
}
