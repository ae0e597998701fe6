package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id> [id...]",
	Short: "Delete one or more work items",
	Long:  "Soft-delete work items. The registry entry stays as a tombstone and deleted ids are never reused; parent rollups are updated.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		var errors []string
		for _, id := range args {
			if id == s.ProjectID() {
				errors = append(errors, fmt.Sprintf("%s: cannot delete the project root", id))
				continue
			}
			if err := s.Delete(id); err != nil {
				errors = append(errors, fmt.Sprintf("%s: %v", id, err))
				continue
			}
			if !quiet {
				fmt.Printf("Deleted %s\n", id)
			}
		}

		if len(errors) > 0 {
			for _, e := range errors {
				errorf("%s", e)
			}
			return fmt.Errorf("%d item(s) failed to delete", len(errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
