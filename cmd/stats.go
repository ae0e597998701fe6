package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/format"
	"github.com/RamXX/rollup/internal/graph"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show workspace statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		items, err := s.Registry().Items()
		if err != nil {
			return err
		}

		st := graph.Build(items).Stats()
		if jsonOut {
			return format.JSON(os.Stdout, st)
		}
		format.Stats(os.Stdout, st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
