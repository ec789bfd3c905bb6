// Seed command resets the store to a fixed fruit set.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/fruits/internal/seed"
)

var flagSeedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Delete every fruit and insert the seed set",
	Long: `Seed clears the fruits table and inserts a fixed set of fruits.

Without --file the built-in set is used. A seed file is YAML:

  fruits:
    - name: apple
      color: red
      readyToEat: true`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fruits, err := seed.Load(flagSeedFile)
		if err != nil {
			return userError{err}
		}

		cup, tbl, err := openFruits(cmd.Context())
		if err != nil {
			return err
		}
		defer detach(cup)

		ids, err := seed.Reset(cmd.Context(), tbl, fruits)
		if err != nil {
			return err
		}
		logger.Info("store reset", zap.Int("fruits", len(ids)))

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, fruits)
		}
		for i, f := range fruits {
			fmt.Fprintf(out, "%s\t%s\n", ids[i], f.Name)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&flagSeedFile, "file", "", "YAML seed file (default: built-in set)")
}
