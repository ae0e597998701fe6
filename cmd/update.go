package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/model"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update work item fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		s, err := openStore()
		if err != nil {
			return err
		}

		if !s.ItemExists(id) {
			return fmt.Errorf("work item %s not found", id)
		}

		changed := false

		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			st, err := model.ParseStatus(v)
			if err != nil {
				return err
			}
			if err := s.SetStatus(id, st); err != nil {
				return err
			}
			changed = true
		}

		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			if err := s.SetTitle(id, v); err != nil {
				return err
			}
			changed = true
		}

		if !changed {
			return fmt.Errorf("no fields specified to update")
		}

		if !quiet {
			fmt.Printf("Updated %s\n", id)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().StringP("status", "s", "", "new status (planned, in-progress, completed, blocked)")
	updateCmd.Flags().String("title", "", "new title")
	rootCmd.AddCommand(updateCmd)
}
