package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/instance"
	"github.com/fakeyudi/worktime/internal/monitor"
	"github.com/fakeyudi/worktime/internal/worklog"
)

var statusFull bool

// statusCmd only reads the log; it never appends a Resumed line.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's work time without touching the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetConfig()
		store := worklog.NewStore(c.DataDir, appClock)

		start, ok := store.EarliestStartToday()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no session today")
			return nil
		}

		now := appClock.Now().Truncate(time.Second)
		if statusFull {
			fmt.Fprintln(cmd.OutOrStdout(), monitor.ComputeInfo(start, now).String())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), monitor.Compute(start, now).Text)
		}

		if pid, running := instance.New(c.DataDir).IsRunning(); running {
			fmt.Fprintf(cmd.OutOrStdout(), "Tracker: running (pid %d)\n", pid)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Tracker: not running")
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusFull, "full", false, "Show start, current and leaving times")
	rootCmd.AddCommand(statusCmd)
}
