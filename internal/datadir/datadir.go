// Package datadir locates the per-user metactl data directory and maps
// logical namespaces to the data and lock files stored inside it.
//
// The directory defaults to ~/.metactl and can be overridden with the
// METACTL_DATA_DIR environment variable. Each namespace owns exactly one
// data file (<namespace>.json) and one lock file (<namespace>.lock), so
// every consumer of a namespace contends on the same lock path.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvDataDir is the environment variable that overrides the data directory.
const EnvDataDir = "METACTL_DATA_DIR"

// DefaultDirName is the directory created under the user's home directory
// when no override is set.
const DefaultDirName = ".metactl"

var configured string

// SetDir records a data directory chosen through configuration. The
// METACTL_DATA_DIR environment variable still wins; an empty value clears
// the configured directory.
func SetDir(dir string) {
	configured = dir
}

// Dir returns the metactl data directory without creating it.
// Precedence: METACTL_DATA_DIR, then the configured directory, then
// ~/.metactl.
func Dir() (string, error) {
	if override := os.Getenv(EnvDataDir); override != "" {
		return override, nil
	}
	if configured != "" {
		return configured, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Ensure returns the data directory, creating it if it does not exist.
func Ensure() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return dir, nil
}

// DataFile returns the path of the JSON data file for a namespace.
// The directory is created if missing.
func DataFile(namespace string) (string, error) {
	dir, err := Ensure()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, namespace+".json"), nil
}

// LockFile returns the path of the lock file paired with a namespace.
// The directory is created if missing.
func LockFile(namespace string) (string, error) {
	dir, err := Ensure()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, namespace+".lock"), nil
}

// Subdir returns a namespaced subdirectory of the data directory,
// creating it if missing.
func Subdir(namespace string) (string, error) {
	dir, err := Ensure()
	if err != nil {
		return "", err
	}
	sub := filepath.Join(dir, namespace)
	if err := os.MkdirAll(sub, 0755); err != nil {
		return "", fmt.Errorf("failed to create data subdirectory %s: %w", sub, err)
	}
	return sub, nil
}
