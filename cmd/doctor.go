package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/engine"
	"github.com/RamXX/rollup/internal/format"
	"github.com/RamXX/rollup/internal/graph"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate hierarchy and state document integrity",
	RunE: func(cmd *cobra.Command, args []string) error {
		fix, _ := cmd.Flags().GetBool("fix")

		s, err := openStore()
		if err != nil {
			return err
		}

		issues, err := s.Engine().ValidateHierarchy()
		if err != nil {
			return err
		}

		// Parent-chain cycles are structural and never auto-repaired.
		items, err := s.Registry().Items()
		if err != nil {
			return err
		}
		cycles := graph.Build(items).DetectCycles()
		for _, cycle := range cycles {
			issues = append(issues, engine.Issue{
				ItemID:   cycle[0],
				Severity: engine.SeverityError,
				Message:  "cycle in parent chain: " + strings.Join(cycle, " -> "),
			})
		}

		if jsonOut && !fix {
			return format.JSON(os.Stdout, issues)
		}
		format.Diagnostics(os.Stdout, issues)

		if !fix {
			return nil
		}
		results, err := s.Engine().RepairHierarchy()
		if err != nil {
			return err
		}
		fmt.Println()
		if jsonOut {
			return format.JSON(os.Stdout, results)
		}
		format.Repairs(os.Stdout, results)
		return nil
	},
}

func init() {
	doctorCmd.Flags().Bool("fix", false, "regenerate missing or corrupt state documents")
	rootCmd.AddCommand(doctorCmd)
}
