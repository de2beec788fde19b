package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/applog"
	"github.com/fakeyudi/worktime/internal/clock"
	"github.com/fakeyudi/worktime/internal/config"
)

// cfg holds the loaded configuration, populated in PersistentPreRunE.
var cfg config.Config

// logger is the diagnostics logger, populated in PersistentPreRunE.
var logger = zerolog.Nop()

// closeLog releases the diagnostics file.
var closeLog = func() error { return nil }

// appClock is the wall clock used by every command. Tests replace it.
var appClock clock.Clock = clock.Real{}

var (
	configPath  string
	dataDirFlag string
	verbose     bool
)

var buildVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "worktime",
	Short: "Track today's work time against an 8h30m limit",
	Long: `worktime tracks elapsed work time against a fixed daily limit of 8:30:00.

Restarting the tracker on the same day resumes from the first start logged
that day instead of resetting the clock. Every lifecycle event is appended to
worktime.log in the data directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = *loaded
		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}
		if verbose {
			cfg.LogLevel = "debug"
		}

		logger, closeLog = applog.New(applog.Options{
			Level:   cfg.LogLevel,
			Path:    cfg.DebugLog,
			DataDir: cfg.DataDir,
			Console: diagnosticsConsole(cmd),
		})
		logger.Debug().
			Str("command", cmd.Name()).
			Str("data_dir", cfg.DataDir).
			Dur("tick_interval", cfg.TickInterval).
			Msg("config loaded")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute(version string) {
	buildVersion = version
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// diagnosticsConsole returns stderr for a verbose headless run, which has no
// status UI to disturb. Every other command keeps diagnostics in the file.
func diagnosticsConsole(cmd *cobra.Command) io.Writer {
	if verbose && runHeadless && cmd.Name() == "run" {
		return cmd.ErrOrStderr()
	}
	return nil
}

// GetConfig returns the loaded configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/worktime/config.json)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory holding worktime.log and session.dat")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug diagnostics to the data directory")
}
