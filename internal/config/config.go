package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configurable worktime settings. The work limit itself is
// fixed and deliberately absent.
type Config struct {
	DataDir      string        `mapstructure:"data_dir"`      // where worktime.log and session.dat live
	TickInterval time.Duration `mapstructure:"tick_interval"` // how often the monitor re-evaluates
	LogLevel     string        `mapstructure:"log_level"`     // "debug" | "info" | "warn" | "error"
	DebugLog     string        `mapstructure:"debug_log"`     // diagnostics file; empty means <data_dir>/debug.log when debugging
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		TickInterval: time.Minute,
		LogLevel:     "info",
	}
}

// DefaultDataDir returns $XDG_DATA_HOME/worktime or ~/.local/share/worktime.
func DefaultDataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "worktime")
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "worktime")
}

// GlobalPath returns ~/.config/worktime/config.json.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "worktime", "config.json"), nil
}

// Load reads the config file at path, or the global config when path is
// empty. A missing file yields defaults. WORKTIME_* environment variables
// override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GlobalPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("WORKTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, &ParseError{Path: path, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("tick_interval", d.TickInterval)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("debug_log", d.DebugLog)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
