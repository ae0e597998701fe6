package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/format"
)

var childrenCmd = &cobra.Command{
	Use:   "children <id>",
	Short: "List child items of a parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		s, err := openStore()
		if err != nil {
			return err
		}

		entries, err := s.Registry().GetChildren(id)
		if err != nil {
			return err
		}

		if jsonOut {
			return format.JSON(os.Stdout, entries)
		}
		format.Table(os.Stdout, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(childrenCmd)
}
