// Package paths resolves the configuration file and data directory locations
// used by the CLI.
package paths

import (
	"os"
	"path/filepath"
)

// DefaultDataDirName is the CWD-relative data directory holding the shot
// catalog.
const DefaultDataDirName = ".hetdex-db"

// Environment variable names for overrides.
const (
	EnvConfigFile = "HETDEX_CONFIG"
	EnvDataDir    = "HETDEX_DATA_DIR"
)

// ResolveConfigFile returns the configuration file path following the
// precedence chain: flag > HETDEX_CONFIG env. An empty result means no
// configuration file is in use.
func ResolveConfigFile(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return filepath.Abs(env)
	}
	return "", nil
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config value > HETDEX_DATA_DIR env > $(CWD)/.hetdex-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
