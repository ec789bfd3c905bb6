// List command prints stored fruits.
package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

var (
	flagListName  string
	flagListColor string
	flagListReady string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List fruits, oldest first",
	Long: `List prints the stored fruits. Filters are ANDed together.

Example:
  fruits list
  fruits list --color red
  fruits list --ready true --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := listFilter(cmd)
		if err != nil {
			return userError{err}
		}

		cup, tbl, err := openFruits(cmd.Context())
		if err != nil {
			return err
		}
		defer detach(cup)

		fruits, err := tbl.Fetch(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("fetch fruits: %w", err)
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, fruits)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tREADY")
		for _, f := range fruits {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", f.FruitID, f.Name, f.Color, f.ReadyToEat)
		}
		return tw.Flush()
	},
}

// listFilter builds a Fetch filter from the flags the user set.
func listFilter(cmd *cobra.Command) (map[string]any, error) {
	filter := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("name") {
		filter[types.FilterName] = flagListName
	}
	if flags.Changed("color") {
		filter[types.FilterColor] = flagListColor
	}
	if flags.Changed("ready") {
		ready, err := strconv.ParseBool(flagListReady)
		if err != nil {
			return nil, fmt.Errorf("--ready: %q is not a boolean", flagListReady)
		}
		filter[types.FilterReadyToEat] = ready
	}
	return filter, nil
}

func init() {
	listCmd.Flags().StringVar(&flagListName, "name", "", "only fruits with this name")
	listCmd.Flags().StringVar(&flagListColor, "color", "", "only fruits with this color")
	listCmd.Flags().StringVar(&flagListReady, "ready", "", "only fruits that are (true) or are not (false) ready to eat")
}
