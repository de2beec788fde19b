package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/instance"
)

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Ask the running tracker to end today's session",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := instance.New(GetConfig().DataDir).RequestQuit()
		if err != nil {
			if errors.Is(err, instance.ErrNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "no tracker running")
				return nil
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Asked tracker (pid %d) to end the session.\n", pid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quitCmd)
}
