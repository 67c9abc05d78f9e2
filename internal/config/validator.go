package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/metarepo/metactl/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "lock.max_retries")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels as they appear in
// the config file (lowercase). The logging package stores its level
// constants uppercase; level matching is case-insensitive either way.
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	out := make([]string, len(levels))
	for i, level := range levels {
		out[i] = strings.ToLower(level)
	}
	return out
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLock()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validatePaths()...)
	errors = append(errors, c.validateTree()...)

	return errors
}

// validateLock validates the LockConfig
func (c *Config) validateLock() []ValidationError {
	var errors []ValidationError

	if c.Lock.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "lock.max_retries",
			Value:   c.Lock.MaxRetries,
			Message: "must be non-negative (0 means a single attempt)",
		})
	}

	// Upper bound so a typo cannot make a command block for hours
	const maxRetriesLimit = 10000
	if c.Lock.MaxRetries > maxRetriesLimit {
		errors = append(errors, ValidationError{
			Field:   "lock.max_retries",
			Value:   c.Lock.MaxRetries,
			Message: fmt.Sprintf("exceeds maximum of %d", maxRetriesLimit),
		})
	}

	const minRetryInterval = 1      // 1ms minimum
	const maxRetryInterval = 60_000 // 1 minute maximum

	if c.Lock.RetryIntervalMs < minRetryInterval {
		errors = append(errors, ValidationError{
			Field:   "lock.retry_interval_ms",
			Value:   c.Lock.RetryIntervalMs,
			Message: fmt.Sprintf("must be at least %dms", minRetryInterval),
		})
	}
	if c.Lock.RetryIntervalMs > maxRetryInterval {
		errors = append(errors, ValidationError{
			Field:   "lock.retry_interval_ms",
			Value:   c.Lock.RetryIntervalMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxRetryInterval),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if strings.ContainsRune(c.Logging.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validatePaths validates the PathsConfig
func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	if c.Paths.DataDir != "" {
		path := c.Paths.DataDir

		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "paths.data_dir",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Most filesystems cap paths around 4096
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "paths.data_dir",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}

// validateTree validates the TreeConfig
func (c *Config) validateTree() []ValidationError {
	var errors []ValidationError

	if c.Tree.MaxDepth < -1 {
		errors = append(errors, ValidationError{
			Field:   "tree.max_depth",
			Value:   c.Tree.MaxDepth,
			Message: "must be -1 (unlimited) or non-negative",
		})
	}

	return errors
}
