package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/worklog"
)

var (
	logAll    bool
	logFollow bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print today's work log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := worklog.NewStore(GetConfig().DataDir, appClock)
		out := cmd.OutOrStdout()

		if logAll {
			if err := copyLog(out, store.Path()); err != nil {
				return err
			}
		} else {
			today := appClock.Now()
			events, err := store.ReadEvents(&today)
			if err != nil {
				return err
			}
			if len(events) == 0 && !logFollow {
				fmt.Fprintln(out, "no entries today")
			}
			// Lines are printed as logged, never re-rendered.
			for _, e := range events {
				fmt.Fprintln(out, e.Raw)
				if e.Kind == worklog.Ended {
					fmt.Fprintln(out, worklog.Separator)
				}
			}
		}

		if !logFollow {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()
		return store.Follow(ctx, func(line string) {
			fmt.Fprintln(out, line)
		})
	},
}

// copyLog writes the raw log to w. A missing log prints nothing.
func copyLog(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func init() {
	logCmd.Flags().BoolVarP(&logAll, "all", "a", false, "Print the whole log, not just today")
	logCmd.Flags().BoolVarP(&logFollow, "follow", "f", false, "Keep printing new entries as they are written")
	rootCmd.AddCommand(logCmd)
}
