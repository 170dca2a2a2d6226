package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	MaxBackups int `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
	Console    string            `mapstructure:"console"`
}

// ScanConfig configures reconciliation runs.
type ScanConfig struct {
	Workers        int      `mapstructure:"workers"`
	ChunkSize      int      `mapstructure:"chunk_size"`
	FollowSymlinks bool     `mapstructure:"follow_symlinks"`
	Exclude        []string `mapstructure:"exclude"`
}

// ReportConfig configures duplicate reporting.
type ReportConfig struct {
	Format     string   `mapstructure:"format"`
	MinSize    string   `mapstructure:"min_size"`
	Limit      int      `mapstructure:"limit"`
	Include    []string `mapstructure:"include"`
	Exclude    []string `mapstructure:"exclude"`
	Extensions []string `mapstructure:"extensions"`
}

// Config represents the application configuration.
type Config struct {
	ManifestPath string        `mapstructure:"manifest_path"`
	Quiet        bool          `mapstructure:"quiet"`
	Verbose      bool          `mapstructure:"verbose"`
	Scan         ScanConfig    `mapstructure:"scan"`
	Report       ReportConfig  `mapstructure:"report"`
	Logging      LoggingConfig `mapstructure:"logging"`
}

// SetDefaults registers every configuration default on v. It is the
// single source of default values.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("manifest_path", DefaultManifestPath())
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", false)

	v.SetDefault("scan.workers", DefaultWorkers)
	v.SetDefault("scan.chunk_size", DefaultChunkSize)
	v.SetDefault("scan.follow_symlinks", false)
	v.SetDefault("scan.exclude", DefaultExclusions)

	v.SetDefault("report.format", DefaultFormat)
	v.SetDefault("report.min_size", "")
	v.SetDefault("report.limit", DefaultGroupLimit)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use the default log path
	v.SetDefault("logging.rotation.max_size_mb", 10)
	v.SetDefault("logging.rotation.max_age_days", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.components", map[string]string{
		"scanner":  "info",
		"manifest": "info",
		"output":   "warn",
	})
}

// Load configures v with defaults, TALLY_ environment variables, and the
// config file, then unmarshals the merged settings. A non-empty cfgFile
// overrides the search locations, and such an explicit file must exist;
// a missing file in the search path is not an error. The CLI passes its
// process-global viper instance here, so flags bound to it merge in too.
//
// Config file search locations:
//   - $XDG_CONFIG_HOME/tally/config.yaml
//   - $HOME/.config/tally/config.yaml
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expanded, err := ExpandPath(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	cfg.ManifestPath = expanded

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "tally"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "tally"), nil
}

// DataDir returns $XDG_DATA_HOME/tally/ for the manifest file.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "tally")
}

// StateDir returns $XDG_STATE_HOME/tally/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "tally")
}

// DefaultManifestPath returns the default manifest location.
func DefaultManifestPath() string {
	return filepath.Join(DataDir(), DefaultManifestName)
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "tally.log")
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
