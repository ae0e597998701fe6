package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/format"
	"github.com/RamXX/rollup/internal/model"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show work item detail with its rollup state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		s, err := openStore()
		if err != nil {
			return err
		}

		entry, err := s.Registry().GetWorkItem(id)
		if err != nil {
			return fmt.Errorf("work item %s not found: %w", id, err)
		}

		var doc *model.StateDocument
		if !entry.Type.IsLeaf() {
			statePath, err := s.Registry().GetStatePath(id)
			if err != nil {
				return err
			}
			doc, err = s.States().Reconcile(statePath)
			if err != nil {
				errorf("state document unreadable for %s: %v", id, err)
			}
		}

		body, err := s.ItemBody(id)
		if err != nil {
			body = ""
		}

		if jsonOut {
			return format.JSON(os.Stdout, struct {
				Entry *model.RegistryEntry `json:"entry"`
				State *model.StateDocument `json:"state,omitempty"`
			}{entry, doc})
		}
		format.Detail(os.Stdout, entry, doc, body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
