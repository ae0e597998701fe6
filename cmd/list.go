package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/format"
	"github.com/RamXX/rollup/internal/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work items",
	RunE: func(cmd *cobra.Command, args []string) error {
		statusStr, _ := cmd.Flags().GetString("status")
		typeStr, _ := cmd.Flags().GetString("type")
		parent, _ := cmd.Flags().GetString("parent")

		var status model.Status
		if statusStr != "" {
			st, err := model.ParseStatus(statusStr)
			if err != nil {
				return err
			}
			status = st
		}
		var typ model.WorkItemType
		if typeStr != "" {
			t, err := model.ParseWorkItemType(typeStr)
			if err != nil {
				return err
			}
			typ = t
		}

		s, err := openStore()
		if err != nil {
			return err
		}

		items, err := s.Registry().Items()
		if err != nil {
			return err
		}

		var filtered []*model.RegistryEntry
		for _, entry := range items {
			if status != "" && entry.Status != status {
				continue
			}
			if typ != "" && entry.Type != typ {
				continue
			}
			if parent != "" && entry.Parent != parent {
				continue
			}
			filtered = append(filtered, entry)
		}

		if jsonOut {
			return format.JSON(os.Stdout, filtered)
		}
		format.Table(os.Stdout, filtered)
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "filter by status")
	listCmd.Flags().StringP("type", "t", "", "filter by type")
	listCmd.Flags().StringP("parent", "p", "", "filter by parent ID")
	rootCmd.AddCommand(listCmd)
}
