package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/store"
)

var (
	dataDir string
	jsonOut bool
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:          "rollup",
	Short:        "Hierarchical work-item tracker with state rollup",
	Long:         "rollup -- file-backed planning tracker that keeps per-item progress documents consistent up the hierarchy.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "workspace directory (default: nearest .plan.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-essential output")
}

// newLogger builds the CLI logger honoring --verbose and --quiet.
func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// resolveDataDir returns the workspace directory, walking up the tree to
// find a directory holding .plan.yaml.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(dir + "/" + store.ConfigFile); err == nil {
			return dir
		}
		parent := parentDir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "."
}

func parentDir(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			if i == 0 {
				return "/"
			}
			return s[:i]
		}
	}
	return s
}

func openStore() (*store.Store, error) {
	return store.Open(resolveDataDir(), newLogger())
}

func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "rollup: "+format+"\n", args...)
}
