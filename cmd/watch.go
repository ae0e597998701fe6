package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RamXX/rollup/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and propagate external state edits",
	Long:  "Follow the workspace for out-of-band edits to state documents and re-propagate them. Registry edits invalidate the in-memory cache. Runs until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		debounceMs, _ := cmd.Flags().GetInt("debounce")

		s, err := openStore()
		if err != nil {
			return err
		}
		logger := newLogger()

		handler := func(changes []watch.Change) {
			var paths []string
			for _, c := range changes {
				if c.Registry {
					s.Registry().Invalidate()
					logger.Debug("registry changed, cache invalidated")
					continue
				}
				if c.Removed {
					continue
				}
				paths = append(paths, c.Path)
			}
			if len(paths) == 0 {
				return
			}
			for _, f := range s.Engine().PropagateBatch(paths) {
				logger.Error("propagation failed", "parent", f.ParentID, "err", f.Err)
			}
			if !quiet {
				fmt.Printf("Propagated %d changed document(s)\n", len(paths))
			}
		}

		w, err := watch.New(s.Dir(), handler, watch.Options{
			Debounce: time.Duration(debounceMs) * time.Millisecond,
		}, logger)
		if err != nil {
			return err
		}
		defer w.Stop()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := w.Start(ctx); err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Watching %s (ctrl-c to stop)\n", s.Dir())
		}
		<-ctx.Done()
		return nil
	},
}

func init() {
	watchCmd.Flags().Int("debounce", 200, "debounce window in milliseconds")
	rootCmd.AddCommand(watchCmd)
}
