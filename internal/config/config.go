package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete metactl configuration
type Config struct {
	Lock    LockConfig    `mapstructure:"lock"`
	Logging LoggingConfig `mapstructure:"logging"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Tree    TreeConfig    `mapstructure:"tree"`
}

// LockConfig controls the cross-process lock retry policy
type LockConfig struct {
	// MaxRetries is the number of retries after the first attempt (default: 50)
	MaxRetries int `mapstructure:"max_retries"`
	// RetryIntervalMs is the delay between attempts in milliseconds (default: 100)
	RetryIntervalMs int `mapstructure:"retry_interval_ms"`
}

// RetryInterval returns the retry interval as a time.Duration
func (c *LockConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMs) * time.Millisecond
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory the debug log is written to.
	// If empty, logs go to stderr.
	Dir string `mapstructure:"dir"`
}

// PathsConfig controls where metactl stores data
type PathsConfig struct {
	// DataDir overrides the shared data directory.
	// If empty, the METACTL_DATA_DIR environment variable or ~/.metactl is used.
	// Supports ~ for home directory expansion.
	DataDir string `mapstructure:"data_dir"`
}

// TreeConfig controls tree rendering defaults
type TreeConfig struct {
	// MaxDepth limits recursion into nested meta repos (-1 = unlimited)
	MaxDepth int `mapstructure:"max_depth"`
}

// ResolveDataDir returns the resolved data directory override, expanding a
// leading ~. Empty means no override.
func (p *PathsConfig) ResolveDataDir() string {
	path := p.DataDir
	if path == "" {
		return ""
	}

	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Lock: LockConfig{
			MaxRetries:      50,
			RetryIntervalMs: 100,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
			Dir:     "",
		},
		Paths: PathsConfig{
			DataDir: "", // Empty means use METACTL_DATA_DIR or ~/.metactl
		},
		Tree: TreeConfig{
			MaxDepth: -1,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Lock defaults
	viper.SetDefault("lock.max_retries", defaults.Lock.MaxRetries)
	viper.SetDefault("lock.retry_interval_ms", defaults.Lock.RetryIntervalMs)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Paths defaults
	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)

	// Tree defaults
	viper.SetDefault("tree.max_depth", defaults.Tree.MaxDepth)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "metactl")
	}
	// Fall back to ~/.config/metactl
	home, err := os.UserHomeDir()
	if err != nil {
		return ".metactl"
	}
	return filepath.Join(home, ".config", "metactl")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
