// Package store persists typed state as pretty-printed JSON files with
// crash-safe replacement semantics.
//
// Writes go to a sibling temporary file that is renamed over the target,
// so readers observe either the old contents or the new contents, never a
// partial write. Update combines a read-modify-write cycle with the
// cross-process lock from internal/lock, which makes concurrent updates
// from independent processes fully serialized.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/metarepo/metactl/internal/errors"
	"github.com/metarepo/metactl/internal/lock"
)

var (
	policyMu      sync.RWMutex
	maxRetries    = lock.DefaultMaxRetries
	retryInterval = lock.DefaultRetryInterval
)

// SetLockPolicy overrides the retry policy Update uses when acquiring
// locks. Zero or negative values reset the corresponding setting to its
// default.
func SetLockPolicy(retries int, interval time.Duration) {
	policyMu.Lock()
	defer policyMu.Unlock()
	if retries < 0 {
		retries = lock.DefaultMaxRetries
	}
	if interval <= 0 {
		interval = lock.DefaultRetryInterval
	}
	maxRetries = retries
	retryInterval = interval
}

func lockPolicy() (int, time.Duration) {
	policyMu.RLock()
	defer policyMu.RUnlock()
	return maxRetries, retryInterval
}

// Read loads the JSON document at path into a value of type T.
// A missing, empty, or whitespace-only file yields T's zero value, so a
// first run needs no initialization step. A non-empty file that fails to
// parse is a hard error wrapping errors.ErrStoreCorrupted; corrupt state
// is never silently replaced with defaults.
func Read[T any](path string) (T, error) {
	var zero T

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return zero, nil
		}
		return zero, errors.NewStoreError("failed to read store file", err).WithPath(path)
	}

	if strings.TrimSpace(string(data)) == "" {
		return zero, nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, errors.NewStoreError("failed to parse store file",
			errors.Join(errors.ErrStoreCorrupted, err)).WithPath(path)
	}
	return value, nil
}

// WriteAtomic serializes value as indented JSON and atomically replaces
// the file at path. The document is written to path+".tmp" and renamed
// into place; parent directories are created as needed.
func WriteAtomic[T any](path string, value T) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewStoreError("failed to create store directory", err).WithPath(path)
		}
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.NewStoreError("failed to serialize store data", err).WithPath(path)
	}
	data = append(data, '\n')

	tmpPath := path + ".tmp"
	if err := writeAndSync(tmpPath, data); err != nil {
		os.Remove(tmpPath)
		return errors.NewStoreError("failed to write temporary store file", err).WithPath(path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.NewStoreError("failed to replace store file", err).WithPath(path)
	}
	return nil
}

// writeAndSync writes data to path and flushes it to disk before closing.
func writeAndSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Update performs a lock-protected read-modify-write on the document at
// dataPath. The lock at lockPath is acquired with the configured retry
// policy, the current document (or zero value) is passed to fn for
// in-place mutation, and the result is written back atomically. The lock
// is released on every return path.
//
// Two concurrent Updates on the same (dataPath, lockPath) pair are fully
// serialized; neither mutation is lost.
func Update[T any](dataPath, lockPath string, fn func(*T)) error {
	retries, interval := lockPolicy()
	guard, err := lock.Acquire(lockPath, retries, interval)
	if err != nil {
		return err
	}
	defer guard.Release()

	value, err := Read[T](dataPath)
	if err != nil {
		return err
	}

	fn(&value)

	return WriteAtomic(dataPath, value)
}
