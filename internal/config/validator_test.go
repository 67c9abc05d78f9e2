package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("default config should be valid, got: %v", ValidationErrors(errs))
	}
}

func hasFieldError(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate_Lock(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "negative max retries",
			mutate:    func(c *Config) { c.Lock.MaxRetries = -1 },
			wantField: "lock.max_retries",
		},
		{
			name:      "excessive max retries",
			mutate:    func(c *Config) { c.Lock.MaxRetries = 100000 },
			wantField: "lock.max_retries",
		},
		{
			name:      "zero retry interval",
			mutate:    func(c *Config) { c.Lock.RetryIntervalMs = 0 },
			wantField: "lock.retry_interval_ms",
		},
		{
			name:      "excessive retry interval",
			mutate:    func(c *Config) { c.Lock.RetryIntervalMs = 120_000 },
			wantField: "lock.retry_interval_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if !hasFieldError(errs, tt.wantField) {
				t.Errorf("Validate() = %v, want error on %s", errs, tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "verbose"
		if errs := cfg.Validate(); !hasFieldError(errs, "logging.level") {
			t.Errorf("Validate() = %v, want error on logging.level", errs)
		}
	})

	t.Run("empty level is allowed", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = ""
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("Validate() = %v, want no errors", errs)
		}
	})

	t.Run("all valid levels", func(t *testing.T) {
		for _, level := range ValidLogLevels() {
			cfg := Default()
			cfg.Logging.Level = level
			if errs := cfg.Validate(); len(errs) != 0 {
				t.Errorf("level %q: Validate() = %v, want no errors", level, errs)
			}
		}
	})

	t.Run("level matching is case-insensitive", func(t *testing.T) {
		for _, level := range []string{"info", "INFO", "Warn", "dEbUg"} {
			cfg := Default()
			cfg.Logging.Level = level
			if errs := cfg.Validate(); len(errs) != 0 {
				t.Errorf("level %q: Validate() = %v, want no errors", level, errs)
			}
		}
	})

	t.Run("default level passes validation", func(t *testing.T) {
		cfg := Default()
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("default logging level %q rejected: %v", cfg.Logging.Level, errs)
		}
	})

	t.Run("null byte in dir", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Dir = "/tmp/\x00logs"
		if errs := cfg.Validate(); !hasFieldError(errs, "logging.dir") {
			t.Errorf("Validate() = %v, want error on logging.dir", errs)
		}
	})
}

func TestConfig_Validate_Paths(t *testing.T) {
	t.Run("null byte", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.DataDir = "/data/\x00dir"
		if errs := cfg.Validate(); !hasFieldError(errs, "paths.data_dir") {
			t.Errorf("Validate() = %v, want error on paths.data_dir", errs)
		}
	})

	t.Run("overlong path", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.DataDir = "/" + strings.Repeat("a", 5000)
		if errs := cfg.Validate(); !hasFieldError(errs, "paths.data_dir") {
			t.Errorf("Validate() = %v, want error on paths.data_dir", errs)
		}
	})
}

func TestConfig_Validate_Tree(t *testing.T) {
	cfg := Default()
	cfg.Tree.MaxDepth = -2
	if errs := cfg.Validate(); !hasFieldError(errs, "tree.max_depth") {
		t.Errorf("Validate() = %v, want error on tree.max_depth", errs)
	}

	for _, depth := range []int{-1, 0, 3} {
		cfg := Default()
		cfg.Tree.MaxDepth = depth
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("depth %d: Validate() = %v, want no errors", depth, errs)
		}
	}
}
