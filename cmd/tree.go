package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/format"
	"github.com/RamXX/rollup/internal/graph"
)

var treeCmd = &cobra.Command{
	Use:   "tree [id]",
	Short: "Render the hierarchy as a tree with rollup progress",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		root := s.ProjectID()
		if len(args) == 1 {
			root = args[0]
		}

		items, err := s.Registry().Items()
		if err != nil {
			return err
		}
		g := graph.Build(items)
		node := g.Tree(root)
		if node == nil {
			return fmt.Errorf("work item %s not found", root)
		}

		progress := func(id string) (int, bool) {
			path, err := s.Registry().GetStatePath(id)
			if err != nil || path == "" {
				return 0, false
			}
			doc, err := s.States().Load(path)
			if err != nil {
				return 0, false
			}
			return doc.Progress.Percentage, true
		}

		if jsonOut {
			return format.JSON(os.Stdout, node)
		}
		format.Tree(os.Stdout, node, progress)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
