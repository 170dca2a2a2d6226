package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallylabs/tally/pkg/tally/config"
	"github.com/tallylabs/tally/pkg/tally/logging"
)

var (
	cfgFile string
	cfg     *config.Config

	rootCmd = &cobra.Command{
		Use:   "tally",
		Short: "Maintain a content-addressed file inventory and find duplicates",
		Long: `Tally keeps a persisted manifest of content hashes for every file under
your chosen directories and derives duplicate reports from it. Repeat scans
re-hash only files whose size or modification time changed, so keeping the
inventory current stays cheap even for large trees.

Examples:
  tally scan ~/photos ~/backup      # Build or update the manifest
  tally find-dups                   # Report duplicate content
  tally find-dups -o json           # Machine-readable report
  tally import old.txt -e cp437     # Import a legacy manifest`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/tally/config.yaml)")
	rootCmd.PersistentFlags().StringP("manifest", "m", "", "manifest file path")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("manifest_path", rootCmd.PersistentFlags().Lookup("manifest"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadConfig merges defaults, the config file, TALLY_ environment
// variables, and the bound flags into one Config. Flags are bound to the
// process-global viper instance, so loading through it gives every
// command a single source of settings.
func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// initLogging initializes the log file from the loaded config. Verbose
// mode additionally echoes debug lines to stderr.
func initLogging() error {
	logCfg := logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Components:   cfg.Logging.Components,
		ConsoleLevel: cfg.Logging.Console,
		Rotation: logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.Rotation.MaxSizeMB,
			MaxAgeDays: cfg.Logging.Rotation.MaxAgeDays,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
		},
	}
	if logCfg.Path == "" {
		logCfg.Path = config.DefaultLogPath()
	}
	if cfg.Verbose {
		logCfg.Level = "debug"
		logCfg.ConsoleLevel = "debug"
	}
	return logging.Init(logCfg)
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// manifestPath returns the configured manifest location.
func manifestPath() string {
	return cfg.ManifestPath
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return cfg.Quiet
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}
