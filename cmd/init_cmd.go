package cmd

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init <project title>",
	Short: "Initialize a new workspace",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		author, _ := cmd.Flags().GetString("author")

		dir := dataDir
		if dir == "" {
			dir, _ = os.Getwd()
		}

		if author == "" {
			u, err := user.Current()
			if err == nil {
				author = u.Username
			} else {
				author = "unknown"
			}
		}

		// Check if already initialized.
		if _, err := os.Stat(dir + "/" + store.ConfigFile); err == nil {
			return fmt.Errorf("workspace already initialized at %s", dir)
		}

		s, err := store.Init(dir, title, author, newLogger())
		if err != nil {
			return err
		}
		if jsonOut {
			fmt.Printf("{\"project\":%q}\n", s.ProjectID())
		} else if !quiet {
			fmt.Printf("Initialized workspace at %s (project: %s)\n", s.Dir(), s.ProjectID())
		}
		return nil
	},
}

func init() {
	initCmd.Flags().String("author", "", "workspace author (defaults to OS user)")
	rootCmd.AddCommand(initCmd)
}
