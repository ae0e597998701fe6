package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/model"
)

var createCmd = &cobra.Command{
	Use:   "create <type> <title...>",
	Short: "Create a new work item",
	Long:  "Create a work item under a parent. Types: Epic, Feature, Story, Bug, Phase, Task.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := model.ParseWorkItemType(args[0])
		if err != nil {
			return err
		}
		title := strings.Join(args[1:], " ")
		parent, _ := cmd.Flags().GetString("parent")
		description, _ := cmd.Flags().GetString("description")
		bodyFile, _ := cmd.Flags().GetString("body-file")

		if bodyFile != "" {
			body, err := readBodyFile(bodyFile)
			if err != nil {
				return err
			}
			description = body
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		if parent == "" {
			parent = s.ProjectID()
		}

		entry, err := s.CreateWorkItem(typ, title, description, parent)
		if err != nil {
			return err
		}

		if jsonOut {
			fmt.Printf(`{"id":"%s"}`, entry.ID)
			fmt.Println()
		} else if !quiet {
			fmt.Printf("Created %s: %s\n", entry.ID, entry.Title)
		} else {
			fmt.Println(entry.ID)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("parent", "p", "", "parent work item ID (defaults to the project)")
	createCmd.Flags().StringP("description", "d", "", "item description")
	createCmd.Flags().String("body-file", "", "read description from file (- for stdin)")
	rootCmd.AddCommand(createCmd)
}

// readBodyFile reads content from a file path or stdin (when path is "-").
func readBodyFile(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read body file: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
