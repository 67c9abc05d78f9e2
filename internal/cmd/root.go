package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/metarepo/metactl/internal/config"
	"github.com/metarepo/metactl/internal/datadir"
	"github.com/metarepo/metactl/internal/lock"
	"github.com/metarepo/metactl/internal/logging"
	"github.com/metarepo/metactl/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "metactl",
	Short: "Meta-repository coordination tool",
	Long: `Metactl manages a meta repository: a directory of many child
repositories described by a .meta config file. It tracks worktrees and
sync peers in a shared data directory, coordinating concurrent
invocations through PID-based file locks.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupRuntime()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/metactl/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// A .env in the working directory can carry METACTL_* overrides
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/metactl")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("METACTL")
	// Replace dots with underscores for nested keys in env vars
	// e.g., METACTL_LOCK_MAX_RETRIES for lock.max_retries
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// setupRuntime applies the loaded config to the lock, store, and logging
// packages.
func setupRuntime() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store.SetLockPolicy(cfg.Lock.MaxRetries, cfg.Lock.RetryInterval())

	datadir.SetDir(cfg.Paths.ResolveDataDir())

	if cfg.Logging.Enabled {
		logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
		if err != nil {
			return err
		}
		lock.SetLogger(logger)
	}

	return nil
}
