package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/entityaxis/internal/paths"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// Config keys.
const (
	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyPageSize = "page_size"
	cfgKeyLogLevel = "log_level"
)

const defaultPageSize = 20

// Config is the CLI configuration. Values come from config.yaml and are
// overridden by ENTITYAXIS_* environment variables. ENTITYAXIS_DATA_DIR is
// resolved by package paths, below the config file value.
type Config struct {
	Backend  string `mapstructure:"backend" yaml:"backend" env:"ENTITYAXIS_BACKEND"`
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size" env:"ENTITYAXIS_PAGE_SIZE"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level" env:"ENTITYAXIS_LOG_LEVEL"`
}

func defaultConfig() Config {
	return Config{
		Backend:  types.BackendSQLite,
		PageSize: defaultPageSize,
		LogLevel: "warn",
	}
}

// Validate checks the values the CLI depends on.
func (c Config) Validate() error {
	var errs []error
	if err := (types.Config{Backend: c.Backend}).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", cfgKeyBackend, err))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", cfgKeyPageSize, c.PageSize))
	}
	return errors.Join(errs...)
}

// loadConfig reads config.yaml from configDir. A missing file leaves the
// defaults in place. Environment overrides are applied last.
func loadConfig(configDir string) (Config, error) {
	def := defaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyPageSize, def.PageSize)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing writes cfg to path unless the file exists. It
// reports whether it wrote the file.
func writeConfigIfMissing(path string, cfg Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# entityaxis configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// resolveDataDir applies the data directory precedence: --data-dir flag,
// config.yaml data_dir, ENTITYAXIS_DATA_DIR, then the config dir default.
func resolveDataDir(flag string, cfg Config, configDir string) (string, error) {
	return paths.ResolveDataDir(flag, cfg.DataDir, configDir)
}
