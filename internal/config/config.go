// Package config loads tap settings from defaults, a YAML file, TAP_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config and cache directories.
	AppName = "tap"
	// EnvPrefix prefixes every environment override, e.g. TAP_PREFIX.
	EnvPrefix = "TAP"
	// ConfigFileName is the config file name inside the config directory.
	ConfigFileName = "config.yaml"
)

// Config keys
const (
	KeyFormulaDir     = "formula_dir"
	KeyPrefix         = "prefix"
	KeyCacheDir       = "cache_dir"
	KeyLogLevel       = "log_level"
	KeyChecksumPolicy = "checksum_policy"
	KeyLockTimeout    = "lock_timeout"
)

// Config holds the resolved settings
type Config struct {
	FormulaDir     string        `mapstructure:"formula_dir"`
	Prefix         string        `mapstructure:"prefix"`
	CacheDir       string        `mapstructure:"cache_dir"`
	LogLevel       string        `mapstructure:"log_level"`
	ChecksumPolicy string        `mapstructure:"checksum_policy"`
	LockTimeout    time.Duration `mapstructure:"lock_timeout"`
}

// LoadOptions controls where settings are read from
type LoadOptions struct {
	// ConfigFile is an explicit config path; it must exist when set
	ConfigFile string
	// ConfigDir overrides the directory searched for config.yaml
	ConfigDir string
	// Flags are bound on top of every other source; flag names use dashes
	Flags *pflag.FlagSet
}

// DefaultConfig returns the settings used when nothing overrides them
func DefaultConfig() Config {
	prefix := ".local"
	if home, err := os.UserHomeDir(); err == nil {
		prefix = filepath.Join(home, ".local")
	}

	cacheDir := filepath.Join(os.TempDir(), AppName)
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, AppName)
	}

	return Config{
		FormulaDir:     "Formula",
		Prefix:         prefix,
		CacheDir:       cacheDir,
		LogLevel:       "info",
		ChecksumPolicy: "warn",
		LockTimeout:    30 * time.Second,
	}
}

// Dir returns $XDG_CONFIG_HOME/tap, defaulting to ~/.config/tap
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load resolves the configuration
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyFormulaDir, defaults.FormulaDir)
	v.SetDefault(KeyPrefix, defaults.Prefix)
	v.SetDefault(KeyCacheDir, defaults.CacheDir)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyChecksumPolicy, defaults.ChecksumPolicy)
	v.SetDefault(KeyLockTimeout, defaults.LockTimeout)

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		dir := opts.ConfigDir
		if dir == "" {
			var err error
			if dir, err = Dir(); err != nil {
				return nil, err
			}
		}
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for _, key := range []string{KeyFormulaDir, KeyPrefix, KeyCacheDir, KeyLogLevel, KeyChecksumPolicy, KeyLockTimeout} {
			flag := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Prefix = expandHome(cfg.Prefix)
	cfg.CacheDir = expandHome(cfg.CacheDir)
	cfg.FormulaDir = expandHome(cfg.FormulaDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the lifecycle cannot run with
func (c *Config) Validate() error {
	var errs []error
	switch c.ChecksumPolicy {
	case "warn", "strict":
	default:
		errs = append(errs, fmt.Errorf("checksum_policy must be warn or strict, got %q", c.ChecksumPolicy))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	if c.Prefix == "" {
		errs = append(errs, errors.New("prefix must not be empty"))
	}
	if c.LockTimeout <= 0 {
		errs = append(errs, fmt.Errorf("lock_timeout must be positive, got %v", c.LockTimeout))
	}
	return errors.Join(errs...)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
