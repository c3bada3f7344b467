// Root command for the hetdex CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hetdex-collaboration/gohetdex/internal/logging"
	"github.com/hetdex-collaboration/gohetdex/internal/paths"
	"github.com/hetdex-collaboration/gohetdex/pkg/config"
	"github.com/hetdex-collaboration/gohetdex/pkg/gohetdex"
)

// Global flag values.
var (
	flagConfig   string
	flagDataDir  string
	flagLogLevel string
	flagPretty   bool
	flagJSON     bool
)

// cfg holds the loaded configuration; nil when no config file is in use.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "hetdex",
	Short:   "Tools supporting HETDEX software and data analysis",
	Version: gohetdex.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(logging.Config{Level: flagLogLevel, Pretty: flagPretty})

		configFile, err := paths.ResolveConfigFile(flagConfig)
		if err != nil {
			return err
		}
		if configFile == "" {
			return nil
		}

		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "configuration file (INI)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.hetdex-db)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "human readable log output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(ditherCmd)
	rootCmd.AddCommand(ifuCmd)
	rootCmd.AddCommand(fplaneCmd)
	rootCmd.AddCommand(fitsCmd)
	rootCmd.AddCommand(catalogCmd)
}

// resolveDataDir returns the data directory following the precedence:
// --data-dir flag > config general.data_dir > HETDEX_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	configValue := ""
	if cfg != nil {
		if v, err := cfg.Get("general", "data_dir"); err == nil {
			configValue = v
		}
	}
	return paths.ResolveDataDir(flagDataDir, configValue)
}
