// Package paths resolves the configuration and data directories of the
// entityaxis CLI.
//
// Both directories are project local by default: the configuration lives in
// .entityaxis under the working directory and the data in its data
// subdirectory. Flags and ENTITYAXIS_* environment variables override them.
package paths

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Default names, relative to the working directory and the config dir.
const (
	DefaultConfigDirName = ".entityaxis"
	DefaultDataDirName   = "data"
	ConfigFileName       = "config.yaml"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "ENTITYAXIS_CONFIG_DIR"
	EnvDataDir   = "ENTITYAXIS_DATA_DIR"
)

type environment struct {
	ConfigDir string `env:"ENTITYAXIS_CONFIG_DIR"`
	DataDir   string `env:"ENTITYAXIS_DATA_DIR"`
}

func lookup() (environment, error) {
	var e environment
	err := env.Parse(&e)
	return e, err
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > ENTITYAXIS_CONFIG_DIR > $(CWD)/.entityaxis.
// The result is always absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	e, err := lookup()
	if err != nil {
		return "", err
	}
	if e.ConfigDir != "" {
		return filepath.Abs(e.ConfigDir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultConfigDirName), nil
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configured (the config file value) > ENTITYAXIS_DATA_DIR >
// configDir/data. A relative configured value is taken relative to
// configDir; relative flag and env values relative to the working directory.
func ResolveDataDir(flag, configured, configDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configured != "" {
		if filepath.IsAbs(configured) {
			return filepath.Clean(configured), nil
		}
		return filepath.Join(configDir, configured), nil
	}
	e, err := lookup()
	if err != nil {
		return "", err
	}
	if e.DataDir != "" {
		return filepath.Abs(e.DataDir)
	}
	return filepath.Join(configDir, DefaultDataDirName), nil
}

// ConfigFile returns the path of the config file inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}
