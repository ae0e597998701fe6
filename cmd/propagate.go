package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var propagateCmd = &cobra.Command{
	Use:   "propagate <id-or-path> [id-or-path...]",
	Short: "Propagate state changes up the hierarchy",
	Long:  "Re-read the named state documents and push their values up through every ancestor. Accepts work item ids or state document paths.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(args))
		for _, arg := range args {
			p, err := s.StatePathOf(arg)
			if err != nil {
				return err
			}
			paths = append(paths, p)
		}

		if len(paths) == 1 {
			if err := s.Engine().PropagateStateChange(paths[0]); err != nil {
				return err
			}
			if !quiet {
				fmt.Printf("Propagated %s\n", args[0])
			}
			return nil
		}

		failures := s.Engine().PropagateBatch(paths)
		for _, f := range failures {
			errorf("%s: %v", f.ParentID, f.Err)
		}
		if len(failures) > 0 {
			return fmt.Errorf("%d parent(s) failed to propagate", len(failures))
		}
		if !quiet {
			fmt.Printf("Propagated %d document(s)\n", len(paths))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(propagateCmd)
}
