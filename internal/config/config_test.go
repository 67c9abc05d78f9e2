package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default lock config
	if cfg.Lock.MaxRetries != 50 {
		t.Errorf("Lock.MaxRetries = %d, want 50", cfg.Lock.MaxRetries)
	}
	if cfg.Lock.RetryIntervalMs != 100 {
		t.Errorf("Lock.RetryIntervalMs = %d, want 100", cfg.Lock.RetryIntervalMs)
	}

	// Verify default logging config
	if cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	// Verify default paths config
	if cfg.Paths.DataDir != "" {
		t.Errorf("Paths.DataDir = %q, want empty", cfg.Paths.DataDir)
	}

	// Verify default tree config
	if cfg.Tree.MaxDepth != -1 {
		t.Errorf("Tree.MaxDepth = %d, want -1", cfg.Tree.MaxDepth)
	}
}

func TestLockConfig_RetryInterval(t *testing.T) {
	c := LockConfig{RetryIntervalMs: 250}
	if got := c.RetryInterval(); got != 250*time.Millisecond {
		t.Errorf("RetryInterval() = %v, want 250ms", got)
	}
}

func TestPathsConfig_ResolveDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"absolute", "/var/lib/metactl", "/var/lib/metactl"},
		{"tilde only", "~", home},
		{"tilde prefix", "~/state/metactl", filepath.Join(home, "state", "metactl")},
		{"tilde not a prefix", "~user/state", "~user/state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PathsConfig{DataDir: tt.in}
			if got := p.ResolveDataDir(); got != tt.want {
				t.Errorf("ResolveDataDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetDefaultsAndLoad(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Lock.MaxRetries != 50 {
		t.Errorf("Lock.MaxRetries = %d, want 50", cfg.Lock.MaxRetries)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Tree.MaxDepth != -1 {
		t.Errorf("Tree.MaxDepth = %d, want -1", cfg.Tree.MaxDepth)
	}
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	content := []byte("lock:\n  max_retries: 5\n  retry_interval_ms: 20\nlogging:\n  enabled: true\n  level: debug\n")
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	SetDefaults()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Lock.MaxRetries != 5 {
		t.Errorf("Lock.MaxRetries = %d, want 5", cfg.Lock.MaxRetries)
	}
	if cfg.Lock.RetryInterval() != 20*time.Millisecond {
		t.Errorf("RetryInterval() = %v, want 20ms", cfg.Lock.RetryInterval())
	}
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("lock.max_retries", -1)
	viper.Set("logging.level", "verbose")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() accepted an invalid config")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Load() error = %T, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("len(errs) = %d, want 2: %v", len(verrs), verrs)
	}
}

func TestGetFallsBackToDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Invalid value makes Load fail; Get should still return defaults
	viper.Set("logging.level", "shouting")

	cfg := Get()
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
	if cfg.Lock.MaxRetries != 50 {
		t.Errorf("Lock.MaxRetries = %d, want default 50", cfg.Lock.MaxRetries)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("respects XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := ConfigDir(); got != filepath.Join("/custom/config", "metactl") {
			t.Errorf("ConfigDir() = %q", got)
		}
	})

	t.Run("falls back to home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := ConfigDir()
		if !strings.HasSuffix(got, filepath.Join(".config", "metactl")) && got != ".metactl" {
			t.Errorf("ConfigDir() = %q, want ~/.config/metactl", got)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	want := filepath.Join("/custom/config", "metactl", "config.yaml")
	if got := ConfigFile(); got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}
}
